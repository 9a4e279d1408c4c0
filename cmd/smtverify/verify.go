package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/smtproof/merkle"
	"github.com/mit-pdos/smtproof/rootsig"
)

// verifyFailure carries the classified reason a proof didn't check out.
type verifyFailure struct {
	err merkle.Err
}

func (f *verifyFailure) Error() string {
	return "verify: " + f.err.String()
}

func checkRootSig(pkPath string, epoch uint64, root []byte, sigHex string) error {
	if sigHex == "" {
		return fmt.Errorf("--pk needs --sig")
	}
	sig, err := hexutil.Decode(sigHex)
	if err != nil {
		return fmt.Errorf("sig: %w", err)
	}
	f, err := os.Open(pkPath)
	if err != nil {
		return err
	}
	defer f.Close()
	v, err := rootsig.ReadVerifier(f)
	if err != nil {
		return fmt.Errorf("read verifier: %w", err)
	}
	if v.VerifyRoot(epoch, root, sig) {
		return fmt.Errorf("bad root signature for epoch %d", epoch)
	}
	return nil
}

func newVerifyCmd() *cobra.Command {
	var cfg config
	var rootHex, labelHex, proofPath, pkPath, sigHex string
	var epoch uint64
	var valOnly bool
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a proof against a (signed) root",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cfg.hasher()
			if err != nil {
				return err
			}
			root, err := hexutil.Decode(rootHex)
			if err != nil {
				return fmt.Errorf("root: %w", err)
			}
			label, err := hexutil.Decode(labelHex)
			if err != nil {
				return fmt.Errorf("label: %w", err)
			}
			if pkPath != "" {
				if err := checkRootSig(pkPath, epoch, root, sigHex); err != nil {
					return err
				}
			}
			b, err := os.ReadFile(proofPath)
			if err != nil {
				return err
			}
			proof, rem, errc := merkle.ProofDecode(b)
			if errc != merkle.ErrNone {
				return &verifyFailure{err: errc}
			}
			if len(rem) != 0 {
				return fmt.Errorf("%d trailing bytes after proof", len(rem))
			}

			out := cmd.OutOrStdout()
			if valOnly {
				val, errc := proof.Verify(h, root, label, cfg.bits)
				if errc != merkle.ErrNone {
					return &verifyFailure{err: errc}
				}
				fmt.Fprintln(out, "included:", hexutil.Encode(val))
				return nil
			}
			res, errc := proof.Check(h, root, label, cfg.bits)
			if errc != merkle.ErrNone {
				return &verifyFailure{err: errc}
			}
			if res.Kind == merkle.Included {
				fmt.Fprintln(out, "included:", hexutil.Encode(res.Val))
			} else {
				fmt.Fprintln(out, "excluded")
			}
			return nil
		},
	}
	cfg.addFlags(cmd)
	cmd.Flags().StringVar(&rootHex, "root", "", "0x-prefixed trusted root digest")
	cmd.Flags().StringVar(&labelHex, "label", "", "0x-prefixed queried label")
	cmd.Flags().StringVar(&proofPath, "proof", "proof.bin", "proof path")
	cmd.Flags().StringVar(&pkPath, "pk", "", "optional public keyset the root must be signed under")
	cmd.Flags().StringVar(&sigHex, "sig", "", "0x-prefixed root signature, with --pk")
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "epoch the root signature binds")
	cmd.Flags().BoolVar(&valOnly, "value-only", false, "only accept membership proofs that reveal a value")
	_ = cmd.MarkFlagRequired("root")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
