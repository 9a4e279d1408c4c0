// Command smtverify generates and checks sparse merkle tree proofs.
package main

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mit-pdos/smtproof/cryptoffi"
	"github.com/mit-pdos/smtproof/smthash"
)

// config is shared by the subcommands that touch a tree.
type config struct {
	bits uint64
	hash string
}

func (c *config) addFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&c.bits, "bits", envUint("SMT_BITS", cryptoffi.HashLen*8), "label bits the tree branches on (env SMT_BITS)")
	cmd.Flags().StringVar(&c.hash, "hash", envString("SMT_HASH", "blake3"), "digest algebra: blake3 or sha3 (env SMT_HASH)")
}

func (c *config) hasher() (*smthash.Hasher, error) {
	return smthash.ByName(c.hash)
}

func envString(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func envUint(key string, def uint64) uint64 {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	x, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		log.Printf("ignoring %s=%q: %v", key, v, err)
		return def
	}
	return x
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "smtverify",
		Short:         "Generate and verify sparse merkle tree proofs",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newKeygenCmd(), newGenCmd(), newVerifyCmd())
	return cmd
}

func main() {
	// a missing .env is fine; flags and the real env still apply.
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal(err)
	}
}
