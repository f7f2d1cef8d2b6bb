// Command keygen prepares the key material a bank needs to join the federation.
package main

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"federated-bank/internal/service"
	"federated-bank/pkg/jwk"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "keygen",
		Short:         "Key material for a federated bank",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(generateCmd())
	root.AddCommand(jwksCmd())
	root.AddCommand(hashCmd())
	return root
}

func generateCmd() *cobra.Command {
	var (
		out  string
		jwks string
		kid  string
		bits int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Create an RSA signing key and its published key set",
		RunE: func(cmd *cobra.Command, args []string) error {
			if kid == "" {
				return errors.New("--kid is required")
			}
			if bits < 2048 {
				return fmt.Errorf("key size %d is below 2048 bits", bits)
			}
			if _, err := os.Stat(out); err == nil {
				return fmt.Errorf("%s exists, refusing to overwrite", out)
			}

			key, err := rsa.GenerateKey(rand.Reader, bits)
			if err != nil {
				return fmt.Errorf("generate key: %w", err)
			}
			if err := writePrivateKey(out, key); err != nil {
				return err
			}
			if err := writeKeySet(jwks, cmd.OutOrStdout(), kid, &key.PublicKey); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (kid %s)\n", out, kid)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "signing.pem", "private key output path")
	cmd.Flags().StringVar(&jwks, "jwks", "", "key set output path (stdout when empty)")
	cmd.Flags().StringVar(&kid, "kid", "", "key id, e.g. ABANK-2025")
	cmd.Flags().IntVar(&bits, "bits", 2048, "RSA modulus size")
	return cmd
}

func jwksCmd() *cobra.Command {
	var (
		jwks string
		kid  string
	)
	cmd := &cobra.Command{
		Use:   "jwks [private-key.pem]",
		Short: "Print the key set for an existing signing key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if kid == "" {
				return errors.New("--kid is required")
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read key: %w", err)
			}
			key, err := jwt.ParseRSAPrivateKeyFromPEM(raw)
			if err != nil {
				return fmt.Errorf("parse key: %w", err)
			}
			return writeKeySet(jwks, cmd.OutOrStdout(), kid, &key.PublicKey)
		},
	}
	cmd.Flags().StringVar(&jwks, "jwks", "", "key set output path (stdout when empty)")
	cmd.Flags().StringVar(&kid, "kid", "", "key id")
	return cmd
}

func hashCmd() *cobra.Command {
	var memory uint32
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a client password read from stdin for seed configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(io.LimitReader(cmd.InOrStdin(), 1024))
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password := strings.TrimRight(string(raw), "\r\n")
			if password == "" {
				return errors.New("empty password")
			}
			hash, err := service.NewArgon2HashService(service.Argon2Params{Memory: memory}).Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().Uint32Var(&memory, "memory", 0, "argon2 memory in KiB (default 65536)")
	return cmd
}

func writePrivateKey(path string, key *rsa.PrivateKey) error {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return fmt.Errorf("encode key: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := pem.Encode(f, &pem.Block{Type: "PRIVATE KEY", Bytes: der}); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeKeySet(path string, stdout io.Writer, kid string, pub *rsa.PublicKey) error {
	set := jwk.Set{Keys: []jwk.Key{jwk.FromRSA(kid, pub)}}
	raw, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("encode key set: %w", err)
	}
	raw = append(raw, '\n')
	if path == "" {
		_, err = stdout.Write(raw)
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}
