package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"eudaimonia/client/api"
	"eudaimonia/cmd/eudaimonia/tui"

	"github.com/spf13/cobra"
)

var (
	loginPassword    string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login <username>",
	Short: "Sign in and remember the session",
	Long: `Signs in and stores the access token in the user config directory.

The password is read from --password or, when omitted, from the first line
of standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the signed-in user and their profile",
	RunE:  runMe,
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Password (read from stdin when empty)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address")
	registerCmd.Flags().StringVarP(&registerPassword, "password", "p", "", "Password (read from stdin when empty)")
	_ = registerCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, meCmd)
}

func readPassword(r io.Reader, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	return password, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	password, err := readPassword(cmd.InOrStdin(), loginPassword)
	if err != nil {
		return err
	}
	pair, err := s.api.Login(cmd.Context(), args[0], password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	if err := s.store.Save(pair.Access); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s\n", args[0])
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	password, err := readPassword(cmd.InOrStdin(), registerPassword)
	if err != nil {
		return err
	}
	user, err := s.api.Register(cmd.Context(), api.RegisterRequest{
		Username:        args[0],
		Email:           registerEmail,
		Password:        password,
		PasswordConfirm: password,
	})
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created account %s; run `eudaimonia login %s` to sign in\n", user.Username, user.Username)
	return nil
}

func runMe(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	if err := s.requireToken(); err != nil {
		return err
	}
	profile, err := s.api.MyProfile(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s <%s>\n", profile.User.Username, profile.User.Email)
	fmt.Fprintf(out, "Joined %s\n\n", profile.User.DateJoined.Format("2006-01-02"))

	section(out, "Living Worlds", nil, len(profile.Memberships), tui.NoMembershipsPrompt, func(i int) string {
		m := profile.Memberships[i]
		return fmt.Sprintf("%s (%s, reputation %d)", m.WorldName, m.Role, m.Reputation)
	})
	section(out, "Smart profiles", nil, len(profile.SmartProfiles), "No smart profiles yet.", func(i int) string {
		return profile.SmartProfiles[i].Name
	})
	return nil
}
