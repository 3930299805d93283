package cmd

import "vaultsearch/internal/tui"

func runTUI() error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	return tui.Run(a.engine)
}
