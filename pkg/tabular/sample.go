// Demo data so the tabular edit feature is usable without an existing file.
package tabular

import (
	"fmt"
	"os"
)

// SampleTable returns a small demo sales table.
func SampleTable() *Table {
	return &Table{
		Columns: []string{"OrderID", "Product", "Price", "Status"},
		Rows: [][]string{
			{"101", "Laptop", "1200", "Shipped"},
			{"102", "Monitor", "300", "Pending"},
			{"103", "Mouse", "25", "Shipped"},
			{"104", "Keyboard", "75", "Pending"},
			{"105", "Webcam", "50", "Delivered"},
		},
	}
}

// WriteSample writes the demo table to path in the format the path implies. It
// refuses to overwrite an existing file.
func WriteSample(path string) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	}
	return SampleTable().Save(path, format)
}
