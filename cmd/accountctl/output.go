package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/route"
)

func writeUser(w io.Writer, user model.User) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Username:\t%s\n", user.Username)
	fmt.Fprintf(tw, "Email:\t%s\n", user.Email)
	if user.FullName != "" {
		fmt.Fprintf(tw, "Name:\t%s\n", user.FullName)
	}
	fmt.Fprintf(tw, "Role:\t%s\n", user.Role)
	tw.Flush()
}

func writeDecision(w io.Writer, path string, d route.Decision) {
	if d.Target != "" {
		fmt.Fprintf(w, "%s: %s -> %s\n", path, d.Outcome, d.Target)
		return
	}
	fmt.Fprintf(w, "%s: %s\n", path, d.Outcome)
}

func writeLinks(w io.Writer, title string, links []route.Link) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, l := range links {
		fmt.Fprintf(w, "  %s\t%s\n", l.Label, l.Target)
	}
}

func writeSessions(w io.Writer, list []model.SessionDevice, now time.Time) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No active sessions.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDEVICE\tIP\tLAST SEEN\t")
	for _, s := range list {
		device := fmt.Sprintf("%s on %s", s.Browser, s.OS)
		if s.IsMobile() {
			device += " (mobile)"
		}
		seen := formatDuration(now.Sub(s.LastSeen))
		if s.IsCurrent {
			seen = "current"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", s.ID, device, s.IP, seen)
	}
	return tw.Flush()
}

// formatDuration renders how long ago something happened.
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
}

func formatSeconds(s int) string {
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
