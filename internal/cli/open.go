package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/zoobzio/tumbler"
)

func newOpenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "open",
		Short: "Decrypt an envelope whose unlock conditions are met",
		Long: `Open reads an envelope, rebuilds its conditions from the manifest in the
order they were sealed, and decrypts the payload. Each condition must be
satisfied before its step runs; the first closed gate fails the command and
nothing is written.

Observations are supplied with flags: --at for the current position,
--credential (or --sample) for the presented credential and --passphrase.
With --wait, open polls the gates until they are all open or the wait runs
out, then attempts to decrypt.`,
		Example: `  tumbler open --in note.json
  tumbler open --in plan.yaml --at 40.713,-74.006 --credential 3f9a... --out plan.txt
  tumbler open --in note.json --wait 90s`,
		Args: cobra.NoArgs,
		RunE: a.wrap(a.runOpen),
	}

	f := cmd.Flags()
	f.StringP("in", "i", "", "envelope to open")
	f.StringP("out", "o", "", "write the plaintext to this file (default stdout)")
	f.StringP("format", "f", "", "envelope format (default from --in extension, else json)")
	f.String("at", "", "current position as lat,lon")
	f.String("credential", "", "presented credential hash")
	f.String("sample", "", "raw credential sample, hashed with the envelope's algorithm")
	f.String("hash-salt", "", "salt for argon2 or key for blake2b when hashing --sample")
	f.String("passphrase", "", "passphrase for passphrase-locked envelopes")
	f.Duration("wait", 0, "wait up to this long for the gates to open")
	_ = cmd.MarkFlagRequired("in")
	cmd.MarkFlagsMutuallyExclusive("credential", "sample")
	return cmd
}

func (a *app) runOpen(cmd *cobra.Command, _ []string) error {
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
	a.log.Debugf("Envelope %s sealed %s with %d conditions", env.ID, env.CreatedAt.Format(time.RFC3339), len(env.Manifest.Conditions))

	obs, err := a.observations(env.Manifest)
	if err != nil {
		return err
	}
	p, err := env.Pipeline(obs, tumbler.WithObserver(a.metrics))
	if err != nil {
		return err
	}

	if wait := a.v.GetDuration("wait"); wait > 0 {
		if err := a.await(cmd, p, wait); err != nil {
			return err
		}
	}

	plaintext, err := p.Decrypt(cmd.Context(), env.Payload)
	if err != nil {
		var step *tumbler.StepError
		if errors.As(err, &step) && errors.Is(err, tumbler.ErrConditionNotSatisfied) {
			a.log.Infof("Gate %d (%s) is closed", step.Index, step.Kind)
		}
		return err
	}
	if err := writeOutput(a.v.GetString("out"), cmd.OutOrStdout(), plaintext); err != nil {
		return err
	}

	a.log.Infof("Opened %d bytes through %d conditions", len(plaintext), p.Len())
	return nil
}

// observations gathers the observed side of each gate from flags.
func (a *app) observations(m tumbler.Manifest) (tumbler.Observations, error) {
	var obs tumbler.Observations

	if at := a.v.GetString("at"); at != "" {
		c, err := parseCoordinate(at)
		if err != nil {
			return obs, fmt.Errorf("--at: %w", err)
		}
		obs.Location = &c
	}

	obs.Credential = a.v.GetString("credential")
	if sample := a.v.GetString("sample"); sample != "" {
		hash, err := hashSample(m, []byte(sample), []byte(a.v.GetString("hash-salt")))
		if err != nil {
			return obs, fmt.Errorf("--sample: %w", err)
		}
		obs.Credential = hash
	}

	if pass := a.v.GetString("passphrase"); pass != "" {
		obs.Passphrase = []byte(pass)
	}
	return obs, nil
}

// hashSample hashes sample with the algorithm of the manifest's first
// biometric condition.
func hashSample(m tumbler.Manifest, sample, salt []byte) (string, error) {
	for _, spec := range m.Conditions {
		if spec.Kind != tumbler.KindBiometric {
			continue
		}
		h, err := tumbler.HasherFor(spec.HashAlgo, salt)
		if err != nil {
			return "", err
		}
		return h.Hash(sample)
	}
	return "", errors.New("envelope has no biometric condition")
}

// await polls the pipeline's gates until they are all open or wait elapses.
// Running out of time is not an error here; Decrypt reports the closed gate.
func (a *app) await(cmd *cobra.Command, p *tumbler.Pipeline, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), wait)
	defer cancel()

	stop := a.startSpinner(cmd, fmt.Sprintf("Waiting up to %s for gates to open", wait))
	err := tumbler.Await(ctx, p, pollInterval(wait))
	stop()

	switch {
	case err == nil:
		a.log.Infof("All gates open")
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		idx, _ := p.Ready()
		a.log.Warnf("Gave up after %s; gate %d is still closed", wait, idx)
		return nil
	default:
		return err
	}
}

// pollInterval spreads about twenty polls over the wait, within [10ms, 1s].
func pollInterval(wait time.Duration) time.Duration {
	return min(max(wait/20, 10*time.Millisecond), time.Second)
}

// startSpinner shows a spinner on stderr unless verbose or debug output is
// on. It returns the function that stops it.
func (a *app) startSpinner(cmd *cobra.Command, message string) func() {
	if a.log.Verbose || a.log.Debug {
		a.log.Infof("%s", message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	s.Suffix = " " + message
	if err := s.Color("cyan"); err != nil {
		a.log.Debugf("Failed to set spinner color: %v", err)
	}
	s.Start()
	return s.Stop
}
