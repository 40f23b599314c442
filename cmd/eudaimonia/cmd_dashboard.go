package main

import (
	"fmt"
	"net/http"

	"eudaimonia/client/api"
	"eudaimonia/client/apiclient"
	"eudaimonia/cmd/eudaimonia/tui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show my worlds, recent posts and profiles",
	RunE:  runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

// dashboard holds each region's outcome separately; one failing region does
// not hide the others.
type dashboard struct {
	memberships    []api.Membership
	membershipsErr error
	feed           []api.Post
	feedErr        error
	profiles       []api.SmartProfile
	profilesErr    error
}

func runDashboard(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	var d dashboard
	// Only an expired session aborts the fan-out.
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		d.memberships, d.membershipsErr = s.api.Memberships(ctx)
		return unauthorized(d.membershipsErr)
	})
	g.Go(func() error {
		d.feed, d.feedErr = s.api.Feed(ctx)
		return unauthorized(d.feedErr)
	})
	g.Go(func() error {
		d.profiles, d.profilesErr = s.api.SmartProfiles(ctx)
		return unauthorized(d.profilesErr)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("session expired; run `eudaimonia login <username>` again")
	}

	out := cmd.OutOrStdout()
	section(out, "My Living Worlds", d.membershipsErr, len(d.memberships), tui.NoMembershipsPrompt, func(i int) string {
		m := d.memberships[i]
		name := m.WorldID
		if m.World != nil {
			name = m.World.Name
		}
		return fmt.Sprintf("%s (%s, reputation %d)", name, m.Role, m.Reputation)
	})
	feed := d.feed
	if len(feed) > 10 {
		feed = feed[:10]
	}
	section(out, "Recent posts", d.feedErr, len(feed), "No posts yet.", func(i int) string {
		return postLine(feed[i])
	})
	section(out, "My profiles", d.profilesErr, len(d.profiles), "No smart profiles yet.", func(i int) string {
		return d.profiles[i].Name
	})
	return nil
}

func unauthorized(err error) error {
	if apiclient.IsStatus(err, http.StatusUnauthorized) {
		return err
	}
	return nil
}
