package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"foodlog/internal/api"
	"foodlog/internal/app"
	"foodlog/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// closeApp(a, &err).
// operation identifies the CLI command being run (e.g. "log", "serve").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.New(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// closeApp closes c and hands its error, such as a failed automatic backup,
// to *err unless the command already failed.
func closeApp(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

// readPassphrase prompts on stderr and reads a passphrase without echo.
// When stdin is not a terminal a single line is read instead.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("reading passphrase: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var rootCmd = &cobra.Command{
	Use:          "foodlog",
	Short:        "Personal food log",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		profileID := uuid.New().String()
		cfg := config.NewConfig(profileID, defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", profileID)
		fmt.Printf("Base Dir:   %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Profile ID: %s\n", cfg.ProfileID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Storage:    %s %s\n", cfg.Storage.Type, cfg.Storage.Path)
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		fmt.Printf("Server:     %s\n", cfg.Server.Addr)
		return nil
	},
}

// vault command
var vaultCmd = &cobra.Command{
	Use:   "vault",
	Short: "Manage snapshot vaults",
}

var vaultCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the configured vault is reachable",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("vault check")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if err := a.ValidateVault(); err != nil {
			return fmt.Errorf("vault check failed: %w", err)
		}
		fmt.Println("Vault OK")
		return nil
	},
}

// keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage snapshot encryption keys",
}

var keysInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("keys init")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		if !a.EncryptionEnabled() {
			return app.ErrNoEncryption
		}
		if a.KeysConfigured() {
			return fmt.Errorf("encryption keys already exist at %s", a.Config().Encryption.PublicKeyPath)
		}

		passphrase, err := readPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return errors.New("passphrases do not match")
		}

		if err := a.SetupKeys(passphrase); err != nil {
			return err
		}
		fmt.Printf("Keys written to %s\n", a.Config().Encryption.PublicKeyPath)
		return nil
	},
}

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Upload a snapshot of the log to the vault",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		a, err := newApp("backup")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		version, err := a.Backup()
		if err != nil {
			return fmt.Errorf("backup failed: %w", err)
		}
		fmt.Printf("Snapshot uploaded (version %d)\n", version)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace the local log with the vault snapshot",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		force, _ := cmd.Flags().GetBool("force")

		a, err := newApp("restore")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		var passphrase string
		if a.EncryptionEnabled() {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		doc, err := a.Restore(passphrase, force)
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}
		fmt.Printf("Restored %d entries and %d custom foods\n", len(doc.Entries), len(doc.Foods))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("getting defaults: %w", err)
		}

		a, err := newApp("serve")
		if err != nil {
			return err
		}
		defer closeApp(a, &err)

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = defaults["addr"]
		}
		if addr == "" {
			addr = a.Config().Server.Addr
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		handler := api.NewRouter(a, api.Options{
			AllowedOrigins: a.Config().Server.AllowedOrigins,
			Logger:         a.Logger(),
		})
		fmt.Fprintf(os.Stderr, "Listening on %s\n", addr)
		return api.Serve(ctx, api.NewServer(addr, handler), a.Logger())
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	vaultCmd.AddCommand(vaultCheckCmd)
	keysCmd.AddCommand(keysInitCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(vaultCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().BoolP("force", "f", false, "Restore even if the local log is newer than the snapshot")
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (default from FOODLOG_ADDR or config)")
}
