// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package secrets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/eventchat/cmd/eventchat/cli"
	"github.com/bureau-foundation/eventchat/lib/sealed"
)

// Command returns the "secrets" parent command.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "secrets",
		Summary: "Manage age-sealed token files",
		Description: `Keep the Communi and ChurchTools tokens out of plain files.

A sealed file is a dotenv file encrypted with age. Commands that connect
to the APIs open it with --secrets and --identity and load its variables
into the environment, where the config file picks them up through
${VAR} references or the EVENTCHAT_* overrides.`,
		Subcommands: []*cli.Command{
			keygenCommand(),
			sealCommand(),
			keysCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Create an identity and seal the tokens to it",
				Command:     "eventchat secrets keygen --output ~/.config/eventchat/identity.txt\n  eventchat secrets seal --recipient age1... --input tokens.env --output tokens.age",
			},
		},
	}
}

type keygenParams struct {
	Output string `json:"output" flag:"output,o" desc:"write the identity to this file (mode 0600) instead of stdout"`
}

func keygenCommand() *cli.Command {
	var params keygenParams

	return &cli.Command{
		Name:    "keygen",
		Summary: "Generate an age identity",
		Description: `Generate a new age x25519 identity. The public key is printed on
stdout; seal files to it with "secrets seal --recipient".`,
		Usage: "eventchat secrets keygen [--output <file>]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("keygen", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			publicKey, err := keygen(params.Output, os.Stdout, time.Now())
			if err != nil {
				return err
			}
			if params.Output != "" {
				logger.Info("wrote identity", "path", params.Output)
				fmt.Fprintf(os.Stdout, "%s\n", publicKey)
			}
			return nil
		},
	}
}

// keygen writes a new identity in age's identity file format to output,
// or to w when output is empty, and returns the public key.
func keygen(output string, w io.Writer, now time.Time) (string, error) {
	keypair, err := sealed.GenerateKeypair()
	if err != nil {
		return "", err
	}
	content := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
		now.Format(time.RFC3339), keypair.PublicKey, keypair.PrivateKey)

	if output == "" {
		_, err := io.WriteString(w, content)
		return keypair.PublicKey, err
	}
	file, err := os.OpenFile(output, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", fmt.Errorf("creating identity file: %w", err)
	}
	if _, err := io.WriteString(file, content); err != nil {
		file.Close()
		return "", fmt.Errorf("writing identity file: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}
	return keypair.PublicKey, nil
}

type sealParams struct {
	Recipients []string `json:"recipients" flag:"recipient,r" desc:"age public key to seal to (repeatable)"`
	Input      string   `json:"input"      flag:"input,i"     desc:"dotenv file to seal (default: stdin)"`
	Output     string   `json:"output"     flag:"output,o"    desc:"sealed file to write (default: stdout)"`
}

func sealCommand() *cli.Command {
	var params sealParams

	return &cli.Command{
		Name:    "seal",
		Summary: "Seal a dotenv file",
		Description: `Encrypt a dotenv file to one or more age recipients. The input must
parse as dotenv so a typo is caught before the tokens are locked away.`,
		Usage: "eventchat secrets seal --recipient <age1...> [--input <file>] [--output <file>]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("seal", &params)
		},
		Run: func(_ context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			var input io.Reader = os.Stdin
			if params.Input != "" {
				file, err := os.Open(params.Input)
				if err != nil {
					return err
				}
				defer file.Close()
				input = file
			}
			ciphertext, names, err := seal(input, params.Recipients)
			if err != nil {
				return err
			}
			if params.Output == "" {
				_, err := os.Stdout.Write(ciphertext)
				return err
			}
			if err := os.WriteFile(params.Output, ciphertext, 0o644); err != nil {
				return fmt.Errorf("writing sealed file: %w", err)
			}
			logger.Info("sealed secrets", "path", params.Output, "variables", len(names), "recipients", len(params.Recipients))
			return nil
		},
	}
}

// seal validates input as dotenv and encrypts it to recipients. It
// returns the armored ciphertext and the sorted variable names.
func seal(input io.Reader, recipients []string) ([]byte, []string, error) {
	if len(recipients) == 0 {
		return nil, nil, fmt.Errorf("at least one --recipient is required")
	}
	for _, recipient := range recipients {
		if err := sealed.ParsePublicKey(recipient); err != nil {
			return nil, nil, err
		}
	}
	plaintext, err := io.ReadAll(input)
	if err != nil {
		return nil, nil, fmt.Errorf("reading input: %w", err)
	}
	variables, err := godotenv.UnmarshalBytes(plaintext)
	if err != nil {
		return nil, nil, fmt.Errorf("input is not a dotenv file: %w", err)
	}
	if len(variables) == 0 {
		return nil, nil, fmt.Errorf("input defines no variables")
	}
	ciphertext, err := sealed.Seal(plaintext, recipients)
	if err != nil {
		return nil, nil, err
	}
	return ciphertext, variableNames(variables), nil
}

type keysParams struct {
	cli.JSONOutput
	Secrets  string `json:"-" flag:"secrets"  desc:"sealed file to inspect"`
	Identity string `json:"-" flag:"identity" desc:"age identity file (default: $EVENTCHAT_IDENTITY)"`
}

func keysCommand() *cli.Command {
	var params keysParams

	return &cli.Command{
		Name:    "keys",
		Summary: "List the variables in a sealed file",
		Description: `Open a sealed file and print the names of the variables it defines.
Values are never printed.`,
		Usage: "eventchat secrets keys --secrets <file> [--identity <file>]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("keys", &params)
		},
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			names, err := keys(params.Secrets, params.Identity)
			if err != nil {
				return err
			}
			if done, err := params.EmitJSON(names); done {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(os.Stdout, name)
			}
			return nil
		},
	}
}

func keys(secretsPath, identityPath string) ([]string, error) {
	if secretsPath == "" {
		return nil, fmt.Errorf("--secrets is required")
	}
	if identityPath == "" {
		identityPath = os.Getenv(cli.IdentityEnvVar)
	}
	if identityPath == "" {
		return nil, fmt.Errorf("--identity or %s is required", cli.IdentityEnvVar)
	}
	variables, err := sealed.LoadEnv(secretsPath, identityPath)
	if err != nil {
		return nil, err
	}
	return variableNames(variables), nil
}

func variableNames(variables map[string]string) []string {
	names := make([]string, 0, len(variables))
	for name := range variables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
