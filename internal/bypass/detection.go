package bypass

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/FranksOps/careerscout/internal/storage"
)

// Detector reports whether a fetch hit a bot-protection wall and which vendor raised it.
type Detector func(res *storage.FetchResult) (detected bool, source string)

// statusLinkedInDenied is the non-standard status LinkedIn answers scrapers with.
const statusLinkedInDenied = 999

// DefaultDetectors returns the detectors applied to every upstream fetch.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
		detectLinkedInAuthwall,
	}
}

// Analyze labels res with the first matching detector and reports whether any matched.
func Analyze(res *storage.FetchResult, detectors []Detector) bool {
	if res == nil {
		return false
	}
	res.DetectedBot, res.DetectionSrc = false, ""
	for _, d := range detectors {
		if detected, source := d(res); detected {
			res.DetectedBot = true
			res.DetectionSrc = source
			return true
		}
	}
	return false
}

func header(res *storage.FetchResult, key string) string {
	return http.Header(res.Headers).Get(key)
}

func serverContains(res *storage.FetchResult, vendor string) bool {
	return strings.Contains(strings.ToLower(header(res, "Server")), vendor)
}

func bodyContainsAny(body []byte, markers ...string) bool {
	for _, m := range markers {
		if bytes.Contains(body, []byte(m)) {
			return true
		}
	}
	return false
}

func detectCloudflare(res *storage.FetchResult) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if serverContains(res, "cloudflare") || bodyContainsAny(res.Body,
		"cf-browser-verification", "cloudflare-nginx", "cf-turnstile", "Attention Required! | Cloudflare") {
		return true, "Cloudflare"
	}
	return false, ""
}

func detectAkamai(res *storage.FetchResult) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if serverContains(res, "akamai") {
		return true, "Akamai"
	}
	// generic "Reference #" block page
	if bodyContainsAny(res.Body, "Reference #") && bodyContainsAny(res.Body, "Access Denied") {
		return true, "Akamai"
	}
	return false, ""
}

func detectDataDome(res *storage.FetchResult) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if serverContains(res, "datadome") || header(res, "X-DataDome") != "" || header(res, "X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bodyContainsAny(res.Body, "geo.captcha-delivery.com", "datadome") {
		return true, "DataDome"
	}
	return false, ""
}

func detectPerimeterX(res *storage.FetchResult) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if header(res, "X-Px-Captcha") != "" || bodyContainsAny(res.Body, "client.perimeterx.net", "px-captcha", "_pxBlock") {
		return true, "PerimeterX"
	}
	return false, ""
}

// detectLinkedInAuthwall catches the 999 response and the sign-in interstitial
// LinkedIn serves to anonymous clients in place of a public profile.
func detectLinkedInAuthwall(res *storage.FetchResult) (bool, string) {
	if res.StatusCode == statusLinkedInDenied {
		return true, "LinkedIn"
	}
	if res.StatusCode == http.StatusOK && bodyContainsAny(res.Body, "authwall", "join-form__form-body") &&
		!bodyContainsAny(res.Body, "top-card-layout__title") {
		return true, "LinkedIn"
	}
	return false, ""
}
