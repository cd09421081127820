package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Kudusch/twitter-user-stats/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored bearer tokens",
	Long: `Manage stored Twitter API bearer tokens.

Tokens are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your tokens or config files!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store a bearer token securely",
	Long: `Store a Twitter API v2 bearer token in the system keychain or an
encrypted file. The label distinguishes multiple tokens; without one
the token is stored as "default".

The token is read from a hidden prompt and never echoed.`,
	Example: `  # Store the default token
  twitterstats auth login

  # Store a second token under a label
  twitterstats auth login academic`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout [label]",
	Short: "Remove a stored bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runLogout,
}

// authListCmd represents the auth list command
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tokens with masked values",
	RunE:  runAuthList,
}

var logoutAll bool

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(authListCmd)

	logoutCmd.Flags().BoolVar(&logoutAll, "all", false, "remove every stored token")
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	label := "default"
	if len(args) > 0 {
		label = strings.TrimSpace(args[0])
	}

	if existing, _ := manager.Retrieve(label); existing != nil {
		reader := bufio.NewReader(os.Stdin)
		fmt.Printf("Token %q already exists. Replace it? (y/N): ", label)
		input, _ := reader.ReadString('\n')
		if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(input)), "y") {
			return nil
		}
	}

	fmt.Print("Bearer token (input hidden): ")
	token, err := readSecret()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	account := &auth.Account{
		Label:        label,
		BearerToken:  token,
		LastModified: time.Now(),
	}
	if err := manager.Store(account); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	fmt.Printf("Token stored as %q\n", label)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	if logoutAll {
		if err := manager.DeleteAll(); err != nil {
			return fmt.Errorf("failed to remove tokens: %w", err)
		}
		fmt.Println("All tokens removed")
		return nil
	}

	label := "default"
	if len(args) > 0 {
		label = strings.TrimSpace(args[0])
	}

	if err := manager.Delete(label); err != nil {
		return fmt.Errorf("failed to remove token %q: %w", label, err)
	}
	fmt.Printf("Token %q removed\n", label)
	return nil
}

func runAuthList(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	accounts, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list tokens: %w", err)
	}
	if len(accounts) == 0 {
		fmt.Println("No stored tokens. Use 'twitterstats auth login' to add one.")
		return nil
	}

	for i, account := range accounts {
		sanitized := auth.SanitizeAccount(account)
		fmt.Printf("%d. %s\n", i+1, sanitized.Label)
		fmt.Printf("   Token: %s\n", sanitized.BearerToken)
		fmt.Printf("   Last Modified: %s\n", sanitized.LastModified.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// readSecret reads a value from stdin without echoing
func readSecret() (string, error) {
	if term.IsTerminal(int(syscall.Stdin)) {
		secret, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err == nil {
			return strings.TrimSpace(string(secret)), nil
		}
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}
