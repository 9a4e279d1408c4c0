package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mit-pdos/smtproof/rootsig"
)

func newKeygenCmd() *cobra.Command {
	var skPath, pkPath string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Make a root-signing keypair",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := rootsig.NewSigner()
			if err != nil {
				return err
			}
			v, err := s.Verifier()
			if err != nil {
				return err
			}
			if err := writeFile(skPath, s.Write); err != nil {
				return fmt.Errorf("write signer: %w", err)
			}
			if err := writeFile(pkPath, v.Write); err != nil {
				return fmt.Errorf("write verifier: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", skPath, pkPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&skPath, "out", "priv.json", "private keyset path")
	cmd.Flags().StringVar(&pkPath, "pub", "pub.json", "public keyset path")
	return cmd
}

func writeFile(path string, write func(w io.Writer) error) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
