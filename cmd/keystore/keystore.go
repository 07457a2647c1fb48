package keystore

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/go-bridge/internal/util/command"
	"github/chapool/go-bridge/internal/wallet/keystore"
	"github/chapool/go-bridge/internal/wallet/seed"
)

const (
	outFlag      = "out"
	generateFlag = "generate"

	mnemonicEnv = "BRIDGE_KEYSTORE_MNEMONIC"
	passwordEnv = "BRIDGE_KEYSTORE_PASSWORD"
)

func New() *cobra.Command {
	return command.NewSubcommandGroup("keystore",
		newCreate(),
	)
}

func newCreate() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Encrypts a mnemonic into a keystore file",
		Long: `Encrypts the mnemonic in ` + mnemonicEnv + ` (or a freshly generated one with --generate)
under ` + passwordEnv + ` and writes it to --out. Point BRIDGE_KEYSTORE_FILE at the result.`,
		Args: cobra.NoArgs,
		RunE: createCmdFunc,
	}

	cmd.Flags().String(outFlag, "keystore.json", "keystore file to write")
	cmd.Flags().Bool(generateFlag, false, "generate a new 24-word mnemonic instead of reading "+mnemonicEnv)

	return cmd
}

func createCmdFunc(cmd *cobra.Command, _ []string) error {
	out, _ := cmd.Flags().GetString(outFlag)
	generate, _ := cmd.Flags().GetBool(generateFlag)

	password := os.Getenv(passwordEnv)
	if password == "" {
		return errors.Errorf("%s is not set", passwordEnv)
	}

	if _, err := os.Stat(out); err == nil {
		return errors.Errorf("%s already exists", out)
	}

	mnemonic := os.Getenv(mnemonicEnv)
	if generate {
		var err error
		if mnemonic, err = seed.Generate(); err != nil {
			return err
		}
	}
	if mnemonic == "" {
		return errors.Errorf("%s is not set and --%s was not given", mnemonicEnv, generateFlag)
	}

	if err := keystore.WriteFile(out, mnemonic, password, keystore.DefaultScryptParams()); err != nil {
		return err
	}

	// a generated phrase is shown once so it can be backed up
	result := map[string]string{"path": out}
	if generate {
		result["mnemonic"] = mnemonic
	}
	return command.PrintJSON(cmd.OutOrStdout(), result)
}
