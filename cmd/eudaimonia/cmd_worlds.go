package main

import (
	"fmt"
	"net/http"
	"strings"

	"eudaimonia/client/api"
	"eudaimonia/client/apiclient"
	"eudaimonia/cmd/eudaimonia/tui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	worldsTheme string
	joinProfile string
)

var worldsCmd = &cobra.Command{
	Use:   "worlds",
	Short: "List Living Worlds",
	RunE:  runWorlds,
}

var worldCmd = &cobra.Command{
	Use:   "world <id>",
	Short: "Show a Living World and its posts",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorld,
}

var joinCmd = &cobra.Command{
	Use:   "join <world-id>",
	Short: "Join a Living World",
	Args:  cobra.ExactArgs(1),
	RunE:  runJoin,
}

var postCmd = &cobra.Command{
	Use:   "post <world-id> <content...>",
	Short: "Post to a Living World",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runPost,
}

func init() {
	worldsCmd.Flags().StringVar(&worldsTheme, "theme", "", "Only show worlds with this theme")
	joinCmd.Flags().StringVar(&joinProfile, "profile", "", "Smart profile to join with")

	rootCmd.AddCommand(worldsCmd, worldCmd, joinCmd, postCmd)
}

func runWorlds(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	worlds, err := s.api.Worlds(cmd.Context(), worldsTheme)
	if err != nil {
		return err
	}
	section(cmd.OutOrStdout(), "Living Worlds", nil, len(worlds), "No Living Worlds yet.", func(i int) string {
		w := worlds[i]
		return fmt.Sprintf("%s  %s (%s, %d members)", w.ID, w.Name, w.Theme, w.MemberCount)
	})
	return nil
}

func runWorld(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}

	var (
		world    api.World
		posts    []api.Post
		postsErr error
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		world, err = s.api.World(ctx, args[0])
		return err
	})
	g.Go(func() error {
		posts, postsErr = s.api.WorldPosts(ctx, args[0])
		return nil
	})
	err = g.Wait()

	out := cmd.OutOrStdout()
	if apiclient.IsStatus(err, http.StatusNotFound) {
		fmt.Fprintln(out, tui.WorldNotFound)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintln(out, world.Name)
	if world.Description != "" {
		fmt.Fprintln(out, world.Description)
	}
	owner := world.OwnerID
	if world.Owner != nil {
		owner = world.Owner.Username
	}
	fmt.Fprintf(out, "%s · %d members · owned by %s\n\n", world.Theme, world.MemberCount, owner)

	section(out, "Posts", postsErr, len(posts), "No posts in this world yet.", func(i int) string {
		return postLine(posts[i])
	})
	return nil
}

func runJoin(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	membership, err := s.api.JoinWorld().Run(cmd.Context(), api.JoinRequest{WorldID: args[0], ProfileID: joinProfile})
	if err != nil {
		return fmt.Errorf("join failed: %s", describe(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Joined as %s\n", membership.Role)
	return nil
}

func runPost(cmd *cobra.Command, args []string) error {
	content := strings.TrimSpace(strings.Join(args[1:], " "))
	if content == "" {
		return fmt.Errorf("post content cannot be empty")
	}
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	post, err := s.api.CreatePost().Run(cmd.Context(), api.PostRequest{Content: content, WorldID: args[0]})
	if err != nil {
		return fmt.Errorf("post failed: %s", describe(err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", post.ID)
	return nil
}

func postLine(p api.Post) string {
	author := p.AuthorID
	if p.Author != nil {
		author = p.Author.Username
	}
	line := fmt.Sprintf("%s: %s", author, p.Content)
	if p.World != nil {
		line += " (in " + p.World.Name + ")"
	}
	return line
}
