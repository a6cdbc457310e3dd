package main

import (
	"fmt"

	"github.com/spf13/cobra"

	jwtx "github.com/dropDatabas3/tenantauth/internal/jwt"
	"github.com/dropDatabas3/tenantauth/internal/util/atomicwrite"
)

func newKeysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Claves de firma RS256",
	}

	var (
		bits    int
		outPath string
	)
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Genera una clave RSA (PKCS8 PEM) e imprime su kid",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bits < jwtx.MinRSABits {
				return fmt.Errorf("--bits debe ser >= %d", jwtx.MinRSABits)
			}
			key, err := jwtx.GenerateRSAKey(bits)
			if err != nil {
				return err
			}
			pemBytes, err := jwtx.EncodePrivateKeyPEM(key)
			if err != nil {
				return err
			}
			kid := jwtx.KeyID(&key.PublicKey)

			if outPath == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(pemBytes))
				fmt.Fprintf(cmd.ErrOrStderr(), "kid=%s\n", kid)
				return nil
			}
			if err := atomicwrite.WriteFile(outPath, pemBytes, 0o600); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (kid=%s)\n", outPath, kid)
			return nil
		},
	}
	gen.Flags().IntVar(&bits, "bits", 2048, "tamaño de la clave (mínimo 2048)")
	gen.Flags().StringVar(&outPath, "out", "", "archivo destino (default: stdout)")

	cmd.AddCommand(gen)
	return cmd
}
