package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iris-platform/iris-go/internal/config"
	"github.com/iris-platform/iris-go/pkg/iris"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save an API key to the credential file",
	Long: `Save an API key (and optionally a user id and base URL) to the
credential file used by every other command.

The key is read from --api-key, or prompted for without echo. When a user id
is given the key is verified against the API before it is saved.

Examples:
  iris login                          # Prompt for the key
  iris login --api-key sk_... --user-id 42
  echo "$KEY" | iris login --user-id 42`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Delete the credential file",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the credentials in effect",
	Long: `Show which API key, user and API host commands will use, and where
the key came from. When a user id is set the account is fetched from the API.`,
	Args: cobra.NoArgs,
	RunE: runWhoami,
}

// LoginResult contains the result of saving credentials.
type LoginResult struct {
	Path     string
	Verified bool
	User     *iris.User
}

func runLogin(cmd *cobra.Command, args []string) error {
	key := strings.TrimSpace(globals.apiKey)
	if key == "" {
		var err error
		key, err = promptAPIKey(os.Stdin, cmd.ErrOrStderr())
		if err != nil {
			return err
		}
	}

	creds := &config.Credentials{APIKey: key, UserID: globals.userID, BaseURL: globals.baseURL}
	result, err := doLogin(cmd.Context(), creds)
	if err != nil {
		return err
	}
	printOutput(cmd, formatLoginOutput(result, globals.asJSON))
	return nil
}

// promptAPIKey reads a key from in, without echo when in is a terminal.
func promptAPIKey(in *os.File, prompt io.Writer) (string, error) {
	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprint(prompt, "IRIS API key: ")
		data, err := term.ReadPassword(fd)
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("reading API key: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading API key: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// doLogin verifies creds when possible and saves them.
func doLogin(ctx context.Context, creds *config.Credentials) (*LoginResult, error) {
	if err := creds.Validate(); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", err)
	}

	result := &LoginResult{}
	if creds.UserID > 0 {
		c, err := newIRISClient(&settings{APIKey: creds.APIKey, UserID: creds.UserID, BaseURL: creds.BaseURL})
		if err != nil {
			return nil, err
		}
		user, err := c.Users.Get(ctx, 0)
		if err != nil {
			return nil, err
		}
		result.User = user
		result.Verified = true
	}

	if err := creds.Save(); err != nil {
		return nil, err
	}
	path, err := config.GetPath()
	if err != nil {
		return nil, err
	}
	result.Path = path
	return result, nil
}

func formatLoginOutput(result *LoginResult, asJSON bool) string {
	if asJSON {
		output := struct {
			Path     string     `json:"path"`
			Verified bool       `json:"verified"`
			User     *iris.User `json:"user,omitempty"`
		}{result.Path, result.Verified, result.User}
		return marshalJSONOrFallback(output)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Saved credentials to %s\n", result.Path))
	if result.User != nil {
		sb.WriteString(fmt.Sprintf("Logged in as %s (user %s)\n", valueOr(result.User.Email, result.User.Name), result.User.ID))
	} else {
		sb.WriteString("Key not verified: pass --user-id to check it against the API.\n")
	}
	return sb.String()
}

func runLogout(cmd *cobra.Command, args []string) error {
	path, err := config.Remove()
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(map[string]string{"removed": path}))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Removed credentials at %s\n", path))
	return nil
}

// WhoamiResult describes the credentials in effect.
type WhoamiResult struct {
	Source    string
	MaskedKey string
	UserID    int
	BaseURL   string
	User      *iris.User
}

func runWhoami(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(rootCmd.PersistentFlags())
	if err != nil {
		return err
	}
	result, err := doWhoami(cmd.Context(), s)
	if err != nil {
		return err
	}
	printOutput(cmd, formatWhoamiOutput(result, globals.asJSON))
	return nil
}

func doWhoami(ctx context.Context, s *settings) (*WhoamiResult, error) {
	c, err := newIRISClient(s)
	if err != nil {
		return nil, err
	}
	result := &WhoamiResult{
		Source:    s.Source,
		MaskedKey: config.MaskAPIKey(s.APIKey),
		UserID:    s.UserID,
		BaseURL:   c.Config().BaseURL(),
	}
	if s.UserID > 0 {
		user, err := c.Users.Get(ctx, 0)
		if err != nil {
			return nil, err
		}
		result.User = user
	}
	return result, nil
}

func formatWhoamiOutput(result *WhoamiResult, asJSON bool) string {
	if asJSON {
		output := struct {
			Source  string     `json:"source"`
			APIKey  string     `json:"api_key"`
			UserID  int        `json:"user_id,omitempty"`
			BaseURL string     `json:"base_url"`
			User    *iris.User `json:"user,omitempty"`
		}{result.Source, result.MaskedKey, result.UserID, result.BaseURL, result.User}
		return marshalJSONOrFallback(output)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("API key:  %s (from %s)\n", result.MaskedKey, result.Source))
	sb.WriteString(fmt.Sprintf("API host: %s\n", result.BaseURL))
	if result.UserID == 0 {
		sb.WriteString("User:     not set\n")
		return sb.String()
	}
	sb.WriteString(fmt.Sprintf("User:     %d", result.UserID))
	if result.User != nil {
		if who := valueOr(result.User.Name, result.User.Email); who != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", who))
		}
		if result.User.Plan != "" {
			sb.WriteString(fmt.Sprintf(", plan %s", result.User.Plan))
		}
	}
	sb.WriteString("\n")
	return sb.String()
}
