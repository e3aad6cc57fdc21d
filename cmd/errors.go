package cmd

import (
	"fmt"
	"net/url"

	sharedErrors "github.com/khanhnv2901/supplywatch/internal/shared/errors"
)

// InvalidSiteURLError signals that the watch target is not a usable URL.
type InvalidSiteURLError struct {
	Site   string
	Reason string
}

func (e *InvalidSiteURLError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("site url %q is invalid: %s", e.Site, e.Reason)
	}
	return fmt.Sprintf("site url %q is invalid", e.Site)
}

func (e *InvalidSiteURLError) Unwrap() error {
	return sharedErrors.ErrInvalidSiteURL
}

func validateSiteURL(site string) error {
	if site == "" {
		return sharedErrors.ErrEmptySiteURL
	}
	u, err := url.Parse(site)
	if err != nil {
		return &InvalidSiteURLError{Site: site, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &InvalidSiteURLError{Site: site, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return &InvalidSiteURLError{Site: site, Reason: "missing host"}
	}
	return nil
}
