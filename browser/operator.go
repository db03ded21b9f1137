package browser

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

const operatorSteps = `1. If you see a login/signup page, please LOG IN manually
2. After login, make sure you can see the JOB LISTINGS
3. Once you can see jobs, PRESS ENTER in this terminal to continue`

// WaitForOperator shows the manual-login instructions on out and blocks until
// a line (ENTER) is read from in.
func WaitForOperator(in io.Reader, out io.Writer) error {
	box := pterm.DefaultBox.WithTitle("MANUAL INTERVENTION REQUIRED").Sprint(operatorSteps)
	fmt.Fprintln(out)
	fmt.Fprintln(out, box)
	fmt.Fprint(out, "\nPress ENTER when you can see job listings in the browser... ")

	if _, err := bufio.NewReader(in).ReadString('\n'); err != nil && err != io.EOF {
		return fmt.Errorf("browser: read operator input: %w", err)
	}

	fmt.Fprintln(out, "\nContinuing with scraping...")
	return nil
}
