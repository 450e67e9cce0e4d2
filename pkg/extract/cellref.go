package extract

import "github.com/xuri/excelize/v2"

// cellRef names the cell at 0-indexed col and 1-indexed row, e.g. "G4".
func cellRef(col, row int) string {
	name, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return ""
	}
	return name
}

// splitCellRef returns the 0-indexed column and 1-indexed row of ref.
func splitCellRef(ref string) (int, int, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return 0, 0, err
	}
	return col - 1, row, nil
}
