/*
Package cli provides helpers shared by the placesgate commands.

Output Formatting:

Commands print results as text or JSON:

	format, err := cli.ParseFormat(flags.format)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(os.Stdout, report)

Values that implement TextRenderer control their own text layout.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

Exit Codes:

ExitCode maps a command error to the process exit status: 2 for
configuration problems, 1 for everything else.
*/
package cli
