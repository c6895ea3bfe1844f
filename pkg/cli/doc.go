/*
Package cli provides command-line interface utilities for Minerva.

The cli package includes output formatters, typed command errors, and
signal handling helpers used by the minerva command.

Output Formatting:

Command results can be printed as plain text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
	// Use ctx for operations that should be cancelled on shutdown
*/
package cli
