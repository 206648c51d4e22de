package ingestion

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known platforms
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(pageURL string) Platform {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Host)
	switch {
	case strings.HasSuffix(host, "greenhouse.io"):
		return PlatformGreenhouse
	case strings.HasSuffix(host, "lever.co"):
		return PlatformLever
	case strings.HasSuffix(host, "workday.com"), strings.HasSuffix(host, "myworkdayjobs.com"):
		return PlatformWorkday
	case strings.HasSuffix(host, "ashbyhq.com"):
		return PlatformAshby
	default:
		return PlatformUnknown
	}
}

// contentSelectors returns the description containers to try, best first
func contentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{".job__description.body", ".job__description", "#content", ".job-post-container"}
	case PlatformLever:
		return []string{".posting-page .section-wrapper", ".posting-description", ".content"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"}
	case PlatformAshby:
		return []string{".ashby-job-posting-description", "main"}
	default:
		return []string{
			".job-description",
			"#job-description",
			".job-details",
			".posting-content",
			"[data-testid='job-description']",
			"main",
			"article",
			"#content",
		}
	}
}

// noiseSelectors returns elements removed before extraction
func noiseSelectors(platform Platform) []string {
	common := []string{
		"nav", "footer", "header", "script", "style", "noscript", "iframe", "svg",
		"form", ".application-form", "#application-form", ".apply-button-container",
		".eeo-statement", ".voluntary-disclosure", ".self-identification",
		".social-share", ".share-buttons", ".cookie-banner", ".cookie-consent",
	}

	switch platform {
	case PlatformGreenhouse:
		return append(common, ".application--wrapper", ".voluntary-self-id", "#usa_self_id_section")
	case PlatformLever:
		return append(common, ".apply-section", ".posting-apply")
	case PlatformWorkday:
		return append(common, "[data-automation-id='applyButton']")
	default:
		return common
	}
}
