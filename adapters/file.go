package adapters

import (
	"bufio"
	"os"

	"github.com/PlumpMath/flowlet/core"
)

// FileLines opens path and produces one element per line, in order,
// grounded on the original's filepipe (`with open(fname) as f: while 1:
// send(f.readline())`). The file handle is released via the flow's
// resource stack regardless of how the flow ends.
func FileLines(path string) *core.Stage {
	return core.NewFlowStage("file_lines("+path+")", func(f *core.Flow) error {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		f.Acquire(file.Close)

		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			if err := f.Send(scanner.Text()); err != nil {
				return nil
			}
		}
		return scanner.Err()
	})
}
