package cli

import (
	"fmt"
	"math"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/zoobzio/tumbler"
)

func newSealCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seal",
		Short: "Encrypt data behind unlock conditions",
		Long: `Seal builds a pipeline from the lock flags, in the fixed order time,
location, biometric, passphrase, runs the input through it and writes an
envelope holding the sealed payload and the manifest needed to open it.

Input comes from --data, --in or stdin. The envelope goes to --out or stdout.`,
		Example: `  tumbler seal --data "meet at noon" --time-lock 3600 --out note.json
  tumbler seal --in plan.txt --location-lock 40.7128,-74.0060 --biometric-lock 3f9a... --out plan.yaml
  TUMBLER_PASSPHRASE=hunter2 tumbler seal --in key.pem --format msgpack > key.msgpack`,
		Args: cobra.NoArgs,
		RunE: a.wrap(a.runSeal),
	}

	f := cmd.Flags()
	f.String("data", "", "plaintext to seal")
	f.StringP("in", "i", "", "read plaintext from this file")
	f.StringP("out", "o", "", "write the envelope to this file (default stdout)")
	f.StringP("format", "f", "", "envelope format: json, yaml, msgpack, bson or xml (default from --out extension, else json)")
	f.Uint64("time-lock", 0, "open no earlier than this many seconds from now")
	f.String("location-lock", "", "open only within 0.01 degrees of lat,lon")
	f.String("biometric-lock", "", "open only for this credential hash")
	f.String("hash-algo", string(tumbler.HashSHA256), "algorithm that produced --biometric-lock: sha256, sha512, blake2b or argon2")
	f.String("passphrase", "", "scramble the payload with a key derived from this passphrase")
	cmd.MarkFlagsMutuallyExclusive("data", "in")
	return cmd
}

func (a *app) runSeal(cmd *cobra.Command, _ []string) error {
	plaintext, err := readInput(a.v.GetString("data"), a.v.IsSet("data"), a.v.GetString("in"), cmd.InOrStdin())
	if err != nil {
		return err
	}

	out := a.v.GetString("out")
	codec, err := codecFor(a.v.GetString("format"), out)
	if err != nil {
		return err
	}

	p, err := a.sealPipeline()
	if err != nil {
		return err
	}
	if p.Len() == 0 {
		a.log.Warnf("No locks given; the envelope will open unconditionally")
	}

	sealed, err := tumbler.Seal(cmd.Context(), codec, p, plaintext)
	if err != nil {
		return err
	}
	if err := writeOutput(out, cmd.OutOrStdout(), sealed); err != nil {
		return err
	}

	a.log.Infof("Sealed %d bytes behind %d conditions as %s", len(plaintext), p.Len(), codec.ContentType())
	return nil
}

// sealPipeline adds the requested locks in the fixed order time, location,
// biometric, passphrase. The sealer is assumed to satisfy every gate it sets.
func (a *app) sealPipeline() (*tumbler.Pipeline, error) {
	p := tumbler.New(tumbler.WithObserver(a.metrics))

	secs, err := cast.ToUint64E(a.v.Get("time-lock"))
	if err != nil {
		return nil, fmt.Errorf("--time-lock: want whole seconds: %w", err)
	}
	if secs > math.MaxInt64/uint64(time.Second) {
		return nil, fmt.Errorf("--time-lock: %d seconds is too long", secs)
	}
	if secs != 0 {
		c, err := tumbler.Time(time.Duration(secs)*time.Second, nil)
		if err != nil {
			return nil, fmt.Errorf("--time-lock: %w", err)
		}
		a.log.Debugf("Adding time lock until %s", c.UnlockAt().Format("2006-01-02T15:04:05Z07:00"))
		p.Add(c)
	}

	if loc := a.v.GetString("location-lock"); loc != "" {
		allowed, err := parseCoordinate(loc)
		if err != nil {
			return nil, fmt.Errorf("--location-lock: %w", err)
		}
		c, err := tumbler.Location(allowed, allowed)
		if err != nil {
			return nil, fmt.Errorf("--location-lock: %w", err)
		}
		a.log.Debugf("Adding location lock at %s", tumbler.CoordinateMasker().Mask(allowed.String()))
		p.Add(c)
	}

	if hash := a.v.GetString("biometric-lock"); hash != "" {
		algo := tumbler.HashAlgo(a.v.GetString("hash-algo"))
		if !tumbler.IsValidHashAlgo(algo) {
			return nil, fmt.Errorf("--hash-algo: unknown algorithm %q", algo)
		}
		c, err := tumbler.Biometric(hash, hash)
		if err != nil {
			return nil, fmt.Errorf("--biometric-lock: %w", err)
		}
		a.log.Debugf("Adding biometric lock %s", tumbler.HashMasker(6).Mask(hash))
		p.Add(c.WithHashAlgo(algo))
	}

	if pass := a.v.GetString("passphrase"); pass != "" {
		salt, err := tumbler.NewSalt()
		if err != nil {
			return nil, err
		}
		c, err := tumbler.Passphrase([]byte(pass), salt)
		if err != nil {
			return nil, fmt.Errorf("--passphrase: %w", err)
		}
		a.log.Debugf("Adding passphrase lock")
		p.Add(c)
	}

	return p, p.Err()
}
