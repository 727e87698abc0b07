package fetch

import (
	"net/url"
	"strings"
)

// Platform identifies the applicant tracking system hosting a job posting.
type Platform string

const (
	PlatformGreenhouse      Platform = "greenhouse"
	PlatformLever           Platform = "lever"
	PlatformWorkday         Platform = "workday"
	PlatformAshby           Platform = "ashby"
	PlatformSmartRecruiters Platform = "smartrecruiters"
	PlatformUnknown         Platform = "unknown"
)

// platformHosts maps a host suffix to its platform.
var platformHosts = []struct {
	suffix   string
	platform Platform
}{
	{"greenhouse.io", PlatformGreenhouse},
	{"lever.co", PlatformLever},
	{"myworkdayjobs.com", PlatformWorkday},
	{"workday.com", PlatformWorkday},
	{"ashbyhq.com", PlatformAshby},
	{"smartrecruiters.com", PlatformSmartRecruiters},
}

// DetectPlatform identifies the hosting platform from a posting URL.
func DetectPlatform(urlStr string) Platform {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return PlatformUnknown
	}

	host := strings.ToLower(parsed.Hostname())
	for _, p := range platformHosts {
		if host == p.suffix || strings.HasSuffix(host, "."+p.suffix) {
			return p.platform
		}
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns the description selectors for a platform,
// most specific first. Unknown platforms use JobPostingSelectors.
func PlatformContentSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{
			".job__description.body",
			".job__description",
			".job-description__content",
			"#content",
			".job-post-container",
		}
	case PlatformLever:
		return []string{
			".posting-page",
			".section-wrapper.page-full-width",
			".posting-description",
			".content",
		}
	case PlatformWorkday:
		return []string{
			"[data-automation-id='jobPostingDescription']",
			"[data-automation-id='jobDescription']",
			".job-description",
		}
	case PlatformAshby:
		return []string{
			".ashby-job-posting-description",
			"[class*='_descriptionText']",
			"main",
		}
	case PlatformSmartRecruiters:
		return []string{
			".job-sections",
			"[itemprop='description']",
			"main",
		}
	default:
		return JobPostingSelectors()
	}
}

// PlatformTitleSelectors returns selectors for the posting title, tried before
// the generic h1 and <title> fallbacks.
func PlatformTitleSelectors(platform Platform) []string {
	switch platform {
	case PlatformGreenhouse:
		return []string{".job__title h1", ".app-title"}
	case PlatformLever:
		return []string{".posting-headline h2"}
	case PlatformWorkday:
		return []string{"[data-automation-id='jobPostingHeader']"}
	case PlatformAshby:
		return []string{".ashby-job-posting-heading"}
	case PlatformSmartRecruiters:
		return []string{".job-title", "[itemprop='title']"}
	default:
		return []string{".job-title", "[data-testid='job-title']"}
	}
}

// commonNoiseSelectors are stripped from every posting before extraction.
var commonNoiseSelectors = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	"[data-testid='application-form']",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// PlatformNoiseSelectors returns selectors for application forms, legal
// notices and other non-description content on a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	selectors := append([]string(nil), commonNoiseSelectors...)

	switch platform {
	case PlatformGreenhouse:
		return append(selectors, ".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply")
	case PlatformLever:
		return append(selectors, ".apply-section", ".lever-application-form", ".posting-apply")
	case PlatformWorkday:
		return append(selectors, "[data-automation-id='applyButton']", ".application-section")
	case PlatformAshby:
		return append(selectors, ".ashby-application-form-container")
	case PlatformSmartRecruiters:
		return append(selectors, ".job-apply", ".sticky-apply")
	default:
		return selectors
	}
}
