package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/srcsintheta/timetracker/internal/backup"
	"github.com/srcsintheta/timetracker/internal/config"
	"github.com/srcsintheta/timetracker/internal/ui"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Encrypted database backups",
	Long: `Create and restore passphrase-encrypted backups of the database.

Backups are age-encrypted (scrypt) and ASCII-armored, so they survive
mail clients and pastebins.`,
}

var backupCreateCmd = &cobra.Command{
	Use:   "create [file]",
	Short: "Write an encrypted backup of the database",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runBackupCreate,
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore <file>",
	Short: "Replace the database with a decrypted backup",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackupRestore,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupCreateCmd)
	backupCmd.AddCommand(backupRestoreCmd)
}

func runBackupCreate(_ *cobra.Command, args []string) error {
	paths := config.GetPaths()
	if _, err := os.Stat(paths.DBFile); err != nil {
		return fmt.Errorf("no database to back up at %s", paths.DBFile)
	}

	outPath := fmt.Sprintf("timetracker-%s.age", time.Now().Format("20060102"))
	if len(args) == 1 {
		outPath = args[0]
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return err
	}
	confirmed, err := readPassphrase("Repeat passphrase: ")
	if err != nil {
		return err
	}
	if passphrase != confirmed {
		return errors.New("passphrases do not match")
	}
	if passphrase == "" {
		return errors.New("empty passphrase")
	}

	if err := backup.Create(paths.DBFile, outPath, passphrase); err != nil {
		return err
	}
	ui.Ok(fmt.Sprintf("Backup written to %s", outPath))
	return nil
}

func runBackupRestore(_ *cobra.Command, args []string) error {
	paths := config.GetPaths()
	inPath := args[0]

	if _, err := os.Stat(paths.DBFile); err == nil {
		if !confirm(fmt.Sprintf("Overwrite %s?", paths.DBFile)) {
			ui.Inf("Kept the current database.")
			return nil
		}
	}

	passphrase, err := readPassphrase("Passphrase: ")
	if err != nil {
		return err
	}

	err = backup.Restore(inPath, paths.DBFile, passphrase)
	switch {
	case errors.Is(err, backup.ErrWrongPassphrase):
		return errors.New("wrong passphrase; the database was left untouched")
	case errors.Is(err, backup.ErrCorruptedBackup):
		return fmt.Errorf("%s is not a readable backup", inPath)
	case err != nil:
		return err
	}

	ui.Ok(fmt.Sprintf("Restored database from %s", inPath))
	return nil
}

// readPassphrase prompts without echo when stdin is a terminal.
func readPassphrase(prompt string) (string, error) {
	fmt.Printf("  %s", prompt)
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(data), nil
}
