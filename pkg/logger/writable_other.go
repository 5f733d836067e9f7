//go:build !unix

package logger

// checkWritable leaves the verdict to os.OpenFile on platforms without access(2).
func checkWritable(dir string) error {
	return nil
}
