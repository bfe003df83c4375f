package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// viper keys
const (
	SecretKey      = "secret"
	IssuerKey      = "issuer"
	OriginKey      = "origin"
	OpenTimeoutKey = "open_timeout"
	ReadTimeoutKey = "read_timeout"
	LogLevelKey    = "log.level"
	LogFormatKey   = "log.format"
)

type app struct {
	v          *viper.Viper
	configFile string
	logger     *slog.Logger

	// transport overrides the HTTP transport; nil uses ogimage.DefaultTransport.
	transport ogimage.Doer
}

func newApp() *app {
	return &app{
		v:      viper.New(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ogimage",
		Short: "Sign and request generated images",
		Long: `ogimage builds signed image requests (HS256 tokens) and submits them
to the image service, printing the resulting image location.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configPath, err := a.initConfig()
			if err != nil {
				return err
			}
			logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetString(LogLevelKey), a.v.GetString(LogFormatKey))
			if err != nil {
				return err
			}
			a.logger = logger
			if configPath != "" {
				a.logger.Debug("using config file", "path", configPath)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default is ./.ogimage.yaml or $HOME/.ogimage.yaml)")

	pf.String("secret", "", "Signing secret")
	_ = a.v.BindPFlag(SecretKey, pf.Lookup("secret"))

	pf.String("issuer", "", "Issuer (iss claim), usually your site's domain")
	_ = a.v.BindPFlag(IssuerKey, pf.Lookup("issuer"))

	pf.String("origin", ogimage.DefaultOrigin, "Image service origin")
	_ = a.v.BindPFlag(OriginKey, pf.Lookup("origin"))

	pf.Duration("open-timeout", ogimage.DefaultOpenTimeout, "Connection phase timeout (0 disables)")
	_ = a.v.BindPFlag(OpenTimeoutKey, pf.Lookup("open-timeout"))

	pf.Duration("read-timeout", ogimage.DefaultReadTimeout, "Read phase timeout (0 disables)")
	_ = a.v.BindPFlag(ReadTimeoutKey, pf.Lookup("read-timeout"))

	pf.String("log-level", "warn", "Log level (debug, info, warn, error)")
	_ = a.v.BindPFlag(LogLevelKey, pf.Lookup("log-level"))

	pf.String("log-format", "text", "Log format (text, json)")
	_ = a.v.BindPFlag(LogFormatKey, pf.Lookup("log-format"))

	a.v.SetEnvPrefix("OGIMAGE")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newSignCmd(a),
		newURLCmd(a),
		newCreateCmd(a),
		newVerifyCmd(a),
	)
	return root
}

// initConfig reads the config file, if any, and returns its path.
func (a *app) initConfig() (string, error) {
	if a.configFile != "" {
		a.v.SetConfigFile(a.configFile)
	} else {
		a.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			a.v.AddConfigPath(home)
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName(".ogimage")
	}

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return a.v.ConfigFileUsed(), nil
}

// config builds the client configuration from flags, environment and file.
func (a *app) config() *ogimage.Config {
	opts := []ogimage.ConfigOption{
		ogimage.WithOrigin(a.v.GetString(OriginKey)),
		ogimage.WithOpenTimeout(a.v.GetDuration(OpenTimeoutKey)),
		ogimage.WithReadTimeout(a.v.GetDuration(ReadTimeoutKey)),
	}
	if s := a.v.GetString(SecretKey); s != "" {
		opts = append(opts, ogimage.WithSecret(s))
	}
	if s := a.v.GetString(IssuerKey); s != "" {
		opts = append(opts, ogimage.WithIssuer(s))
	}
	if a.transport != nil {
		opts = append(opts, ogimage.WithTransport(a.transport))
	}
	return ogimage.NewConfig(opts...)
}

func (a *app) client() (*ogimage.Client, error) {
	return ogimage.NewClient(a.config(), ogimage.WithLogger(a.logger))
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	switch strings.ToLower(format) {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (want text or json)", format)
	}
}
