package commands

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/iris-platform/iris-go/internal/config"
	"github.com/iris-platform/iris-go/pkg/iris"
)

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	apiKey     string
	userID     int
	baseURL    string
	asJSON     bool
	verbose    bool
	configPath string
}

var globals globalOptions

func (g *globalOptions) bind(fs *pflag.FlagSet) {
	fs.StringVar(&g.apiKey, "api-key", "", "API key (overrides IRIS_API_KEY and the credential file)")
	fs.IntVar(&g.userID, "user-id", 0, "Acting user id (overrides IRIS_USER_ID)")
	fs.StringVar(&g.baseURL, "base-url", "", "API base URL (overrides IRIS_BASE_URL)")
	fs.BoolVar(&g.asJSON, "json", false, "Output as JSON")
	fs.BoolVarP(&g.verbose, "verbose", "v", false, "Log requests and error details to stderr")
	fs.StringVar(&g.configPath, "config", "", "Credential file path (overrides IRIS_CONFIG)")
}

// settings are the resolved connection values for one command.
type settings struct {
	APIKey  string
	UserID  int
	BaseURL string
	Source  string
}

// flagKeys maps viper keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"api_key":  "api-key",
	"user_id":  "user-id",
	"base_url": "base-url",
}

// resolveSettings layers flags over IRIS_* environment variables over the
// credential file.
func resolveSettings(fs *pflag.FlagSet) (*settings, error) {
	v := viper.New()
	v.SetEnvPrefix("IRIS")
	v.AutomaticEnv()
	for key, name := range flagKeys {
		if f := fs.Lookup(name); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("binding --%s: %w", name, err)
			}
		}
	}

	path, err := config.GetPath()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	fileLoaded := true
	if err := v.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		fileLoaded = false
	}

	userID, err := parseUserID(v.Get("user_id"))
	if err != nil {
		return nil, err
	}
	s := &settings{
		APIKey:  strings.TrimSpace(v.GetString("api_key")),
		UserID:  userID,
		BaseURL: strings.TrimSpace(v.GetString("base_url")),
		Source:  describeSource(fs, fileLoaded, path),
	}
	return s, nil
}

// parseUserID reads user_id from whichever layer set it. Env values arrive
// as strings, so a typo must fail here instead of becoming user 0.
func parseUserID(raw any) (int, error) {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
		if raw == "" {
			return 0, nil
		}
	}
	id, err := cast.ToIntE(raw)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("invalid user id %q: must be a positive integer", fmt.Sprint(raw))
	}
	return id, nil
}

func describeSource(fs *pflag.FlagSet, fileLoaded bool, path string) string {
	if f := fs.Lookup("api-key"); f != nil && f.Changed {
		return "--api-key flag"
	}
	if os.Getenv("IRIS_API_KEY") != "" {
		return "IRIS_API_KEY"
	}
	if fileLoaded {
		return path
	}
	return "none"
}

func (s *settings) configOptions() []iris.ConfigOption {
	var opts []iris.ConfigOption
	if s.UserID > 0 {
		opts = append(opts, iris.WithUserID(s.UserID))
	}
	if s.BaseURL != "" {
		opts = append(opts, iris.WithBaseURL(s.BaseURL))
	}
	return opts
}

// newIRISClient builds an SDK client from resolved settings.
func newIRISClient(s *settings, extra ...iris.ConfigOption) (*iris.Client, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("no API key: run 'iris login', set IRIS_API_KEY, or pass --api-key")
	}
	cfg, err := iris.NewConfig(s.APIKey, append(s.configOptions(), extra...)...)
	if err != nil {
		return nil, err
	}
	return iris.NewClient(cfg, iris.WithLogger(logger)), nil
}

// clientFromFlags resolves settings from the root persistent flags.
func clientFromFlags(extra ...iris.ConfigOption) (*iris.Client, error) {
	s, err := resolveSettings(rootCmd.PersistentFlags())
	if err != nil {
		return nil, err
	}
	return newIRISClient(s, extra...)
}

// FormatError renders err for the terminal, with hints for typed SDK errors.
func FormatError(err error) string {
	var (
		authErr    *iris.AuthenticationError
		validErr   *iris.ValidationError
		timeoutErr *iris.TimeoutError
		failedErr  *iris.WorkflowFailedError
		netErr     *iris.NetworkError
		apiErr     *iris.APIError
	)
	switch {
	case errors.Is(err, iris.ErrUserIDRequired):
		return "a user id is required: pass --user-id, set IRIS_USER_ID, or run 'iris login --user-id <id>'"
	case errors.As(err, &authErr):
		return withRequestID(fmt.Sprintf("authentication failed (HTTP %d): %s\nCheck your API key or run 'iris login'.",
			authErr.StatusCode, authErr.Message), authErr.RequestID)
	case errors.As(err, &validErr):
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("validation failed: %s", validErr.Message))
		for _, field := range slices.Sorted(maps.Keys(validErr.FieldErrors)) {
			for _, msg := range validErr.FieldErrors[field] {
				sb.WriteString(fmt.Sprintf("\n  %s: %s", field, msg))
			}
		}
		return withRequestID(sb.String(), validErr.RequestID)
	case errors.As(err, &timeoutErr):
		return fmt.Sprintf("%s\nThe workflow keeps running; check it with 'iris chat:status %s'.",
			timeoutErr.Error(), timeoutErr.WorkflowID)
	case errors.As(err, &failedErr):
		return failedErr.Error()
	case errors.As(err, &netErr):
		return fmt.Sprintf("could not reach %s: %v", netErr.URL, netErr.Err)
	case errors.As(err, &apiErr):
		msg := fmt.Sprintf("IRIS error (%d): %s", apiErr.StatusCode, apiErr.Message)
		switch {
		case apiErr.IsRateLimited():
			msg += "\nToo many requests; wait a moment and try again."
		case apiErr.IsNotFound():
			msg += "\nCheck the id, and that it belongs to the acting user."
		}
		return withRequestID(msg, apiErr.RequestID)
	}
	return err.Error()
}

func withRequestID(msg, requestID string) string {
	if requestID == "" {
		return msg
	}
	return msg + "\nRequest ID: " + requestID
}

// parseKeyValues turns ["k=v", ...] into a map.
func parseKeyValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid key=value pair: %q", p)
		}
		out[strings.TrimSpace(k)] = v
	}
	return out, nil
}

// truncate shortens s to limit runes with an ellipsis.
func truncate(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 3 {
		return string(r[:limit])
	}
	return string(r[:limit-3]) + "..."
}

// formatPercent renders a progress value. The API reports either a 0..1
// fraction or a 0..100 percentage; values above 1 are taken as the latter.
func formatPercent(p float64) string {
	if p <= 1 {
		p *= 100
	}
	return fmt.Sprintf("%.0f%%", min(max(p, 0), 100))
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
