package model

import (
	"regexp"
	"time"
)

// SessionDevice is one authenticated device/session known to the server.
type SessionDevice struct {
	ID        string    `json:"id"`
	IP        string    `json:"ip"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	LastSeen  time.Time `json:"lastSeen"`
	IsCurrent bool      `json:"isCurrent"`
	Remember  bool      `json:"remember"`
}

var (
	mobileOS      = regexp.MustCompile(`(?i)Android|webOS|iPhone|iPad|iPod|BlackBerry|IEMobile|Opera Mini`)
	mobileBrowser = regexp.MustCompile(`(?i)Mobile`)
)

// IsMobile guesses whether the device is a phone or tablet.
func (d SessionDevice) IsMobile() bool {
	return mobileOS.MatchString(d.OS) || mobileBrowser.MatchString(d.Browser)
}
