package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/smtproof/internal/memtree"
	"github.com/mit-pdos/smtproof/merkle"
	"github.com/mit-pdos/smtproof/rootsig"
)

// readEntries parses "0xlabel=value" lines. blank lines and # comments are skipped.
func readEntries(path string) ([][2][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var ents [][2][]byte
	sc := bufio.NewScanner(f)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		l, v, ok := strings.Cut(text, "=")
		if !ok {
			return nil, fmt.Errorf("%s:%d: want label=value", path, line)
		}
		label, err := hexutil.Decode(strings.TrimSpace(l))
		if err != nil {
			return nil, fmt.Errorf("%s:%d: label: %w", path, line, err)
		}
		ents = append(ents, [2][]byte{label, []byte(v)})
	}
	return ents, sc.Err()
}

func newGenCmd() *cobra.Command {
	var cfg config
	var entsPath, labelHex, outPath, skPath string
	var epoch uint64
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Build a tree from an entries file and prove one label",
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := cfg.hasher()
			if err != nil {
				return err
			}
			if !merkle.ValidBits(cfg.bits) {
				return fmt.Errorf("bad bits %d", cfg.bits)
			}
			label, err := hexutil.Decode(labelHex)
			if err != nil {
				return fmt.Errorf("label: %w", err)
			}
			ents, err := readEntries(entsPath)
			if err != nil {
				return err
			}

			tr := memtree.New(h, cfg.bits)
			for _, e := range ents {
				if tr.Put(e[0], e[1]) {
					return fmt.Errorf("put %s: bad label or value", hexutil.Encode(e[0]))
				}
			}
			inTree, _, proof, dig, errb := tr.Prove(label)
			if errb {
				return fmt.Errorf("label must be %d bytes", cfg.bits/8)
			}
			if err := os.WriteFile(outPath, merkle.ProofEncode(nil, proof), 0o644); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "root:", hexutil.Encode(dig))
			fmt.Fprintln(out, "in tree:", inTree)
			fmt.Fprintln(out, "depth:", proof.Depth())
			if skPath == "" {
				return nil
			}
			f, err := os.Open(skPath)
			if err != nil {
				return err
			}
			defer f.Close()
			s, err := rootsig.ReadSigner(f)
			if err != nil {
				return fmt.Errorf("read signer: %w", err)
			}
			sig, err := s.SignRoot(epoch, dig)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "sig:", hexutil.Encode(sig))
			return nil
		},
	}
	cfg.addFlags(cmd)
	cmd.Flags().StringVar(&entsPath, "entries", "", "file of 0xlabel=value lines")
	cmd.Flags().StringVar(&labelHex, "label", "", "0x-prefixed label to prove")
	cmd.Flags().StringVar(&outPath, "out", "proof.bin", "proof output path")
	cmd.Flags().StringVar(&skPath, "sk", "", "optional private keyset to sign the root")
	cmd.Flags().Uint64Var(&epoch, "epoch", 0, "epoch the root signature binds")
	_ = cmd.MarkFlagRequired("entries")
	_ = cmd.MarkFlagRequired("label")
	return cmd
}
