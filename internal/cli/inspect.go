package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoobzio/tumbler"
)

func newInspectCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show an envelope's conditions without opening it",
		Long: `Inspect prints an envelope's metadata and its conditions in application
order. Credential hashes, salts and exact coordinates are masked.`,
		Example: `  tumbler inspect --in note.json`,
		Args:    cobra.NoArgs,
		RunE:    a.wrap(a.runInspect),
	}

	f := cmd.Flags()
	f.StringP("in", "i", "", "envelope to inspect")
	f.StringP("format", "f", "", "envelope format (default from --in extension, else json)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

func (a *app) runInspect(cmd *cobra.Command, _ []string) error {
	in := a.v.GetString("in")
	raw, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("failed to read envelope: %w", err)
	}
	codec, err := codecFor(a.v.GetString("format"), in)
	if err != nil {
		return err
	}
	env, err := tumbler.Unpack(codec, raw)
	if err != nil {
		return err
	}
	return printEnvelope(cmd.OutOrStdout(), env)
}

func printEnvelope(w io.Writer, env *tumbler.Envelope) error {
	if _, err := fmt.Fprintf(w, "id:         %s\ncreated:    %s\nversion:    %d\npayload:    %d bytes\nconditions: %d\n",
		env.ID,
		env.CreatedAt.UTC().Format(time.RFC3339),
		env.Manifest.Version,
		len(env.Payload),
		len(env.Manifest.Conditions),
	); err != nil {
		return err
	}
	for i, spec := range env.Manifest.Conditions {
		if _, err := fmt.Fprintf(w, "  %d  %s\n", i, tumbler.Summarize(spec)); err != nil {
			return err
		}
	}
	return nil
}
