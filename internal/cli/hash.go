package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zoobzio/tumbler"
)

func newHashCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash <sample>",
		Short: "Hash a credential sample for --biometric-lock",
		Long: `Hash turns a raw credential sample into the opaque hash compared by a
biometric lock. The same algorithm and salt must be used when sealing and
when opening.`,
		Example: `  tumbler hash "thumb-template-bytes"
  tumbler hash --algo argon2 --salt deployment-salt "thumb-template-bytes"`,
		Args: cobra.ExactArgs(1),
		RunE: a.wrap(a.runHash),
	}

	f := cmd.Flags()
	f.String("algo", string(tumbler.HashSHA256), "hash algorithm: sha256, sha512, blake2b or argon2")
	f.String("salt", "", "argon2 salt (at least 8 bytes) or blake2b key")
	return cmd
}

func (a *app) runHash(cmd *cobra.Command, args []string) error {
	algo := tumbler.HashAlgo(a.v.GetString("algo"))
	h, err := tumbler.HasherFor(algo, []byte(a.v.GetString("salt")))
	if err != nil {
		return err
	}
	hash, err := h.Hash([]byte(args[0]))
	if err != nil {
		return err
	}
	a.log.Debugf("Hashed %d-byte sample with %s", len(args[0]), algo)
	_, err = fmt.Fprintln(cmd.OutOrStdout(), hash)
	return err
}
