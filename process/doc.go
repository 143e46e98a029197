// Package process runs an external program as a child process and reports
// how it terminated.
//
// Run resolves the program, builds the child's environment, wires stdin,
// stdout and stderr through pipes, launches the child as the leader of a new
// process group and then drives a single poll loop that feeds input, hands
// output chunks to optional callbacks and watches the timeout. Whatever
// happens, the child is reaped exactly once before Run returns; if the loop
// did not end with every pipe closed, the whole process group is killed
// first.
//
//	res, err := process.Run(ctx, process.Command{
//	    Binary:  "git",
//	    Args:    []string{"rev-parse", "HEAD"},
//	    Timeout: 10 * time.Second,
//	    Options: process.Options{TrimOutput: true, FailOnNonzeroExit: true},
//	})
//
// Failures are returned as *Error, which embeds an *errors.AppError and
// carries the output captured before the failure.
package process
