// Package backup exports and restores age-encrypted snapshots of the
// database file.
//
// Snapshots use passphrase-based encryption (age scrypt) with armored
// output, so a backup is a self-contained text file safe to mail or drop
// into any sync folder. Restores are written atomically: data goes to a
// temp file, is fsync'd, then renamed into place.
package backup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// ErrWrongPassphrase is returned when decryption fails due to a bad
// passphrase.
var ErrWrongPassphrase = errors.New("wrong passphrase")

// ErrCorruptedBackup is returned when a backup file exists but cannot be
// decrypted or parsed.
var ErrCorruptedBackup = errors.New("backup file is corrupted or unreadable")

// Create encrypts the database file at dbPath into an armored age file at
// outPath.
func Create(dbPath, outPath, passphrase string) error {
	raw, err := os.ReadFile(dbPath)
	if err != nil {
		return fmt.Errorf("reading database: %w", err)
	}

	encrypted, err := encrypt(raw, passphrase)
	if err != nil {
		return err
	}

	return atomicWrite(outPath, encrypted)
}

// Restore decrypts the backup at inPath and atomically replaces the
// database file at dbPath. The backup is decrypted and validated in full
// before anything is overwritten.
func Restore(inPath, dbPath, passphrase string) error {
	raw, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("reading backup: %w", err)
	}

	plain, err := decrypt(raw, passphrase)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	return atomicWrite(dbPath, plain)
}

func encrypt(data []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age recipient: %w", err)
	}

	var buf bytes.Buffer
	armorWriter := armor.NewWriter(&buf)

	w, err := age.Encrypt(armorWriter, recipient)
	if err != nil {
		return nil, fmt.Errorf("initializing age encryption: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("encrypting snapshot: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("finalizing encryption: %w", err)
	}
	if err := armorWriter.Close(); err != nil {
		return nil, fmt.Errorf("finalizing armor: %w", err)
	}

	return buf.Bytes(), nil
}

func decrypt(raw []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, fmt.Errorf("creating age identity: %w", err)
	}

	armorReader := armor.NewReader(bytes.NewReader(raw))
	r, err := age.Decrypt(armorReader, identity)
	if err != nil {
		// filippo.io/age exports no typed error for a wrong passphrase,
		// so it is detected by message substring. If the wording changes
		// upstream, wrong passphrases fall through to ErrCorruptedBackup.
		msg := err.Error()
		if strings.Contains(msg, "no identity matched") || strings.Contains(msg, "incorrect") {
			return nil, fmt.Errorf("%w: %v", ErrWrongPassphrase, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrCorruptedBackup, err)
	}

	plain, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: reading decrypted data: %v", ErrCorruptedBackup, err)
	}
	return plain, nil
}

// atomicWrite writes data to path via temp file, fsync and rename.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".backup-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if err := os.Chmod(tmpName, 0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("setting temp file permissions: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("fsyncing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("committing snapshot: %w", err)
	}

	success = true
	return nil
}
