package summary

import "surveyrelay/internal/model"

// NewRow maps fields onto header positions. Missing trailing fields become
// "" and fields beyond the header are dropped. A repeated extra column
// keeps its first position and its last value.
func NewRow(header, fields []string) model.Row {
	var row model.Row
	for i, name := range header {
		value := ""
		if i < len(fields) {
			value = fields[i]
		}
		switch name {
		case model.ColTimestamp:
			row.Timestamp = value
		case model.ColLanguage:
			row.Language = value
		case model.ColPlayerName:
			row.PlayerName = value
		case model.ColQ2Time:
			row.Q2Time = value
		case model.ColQ3Time:
			row.Q3Time = value
		case model.ColQ4Day:
			row.Q4Day = value
		default:
			row.Extra = setCell(row.Extra, name, value)
		}
	}
	return row
}

func setCell(cells []model.Cell, name, value string) []model.Cell {
	for i := range cells {
		if cells[i].Name == name {
			cells[i].Value = value
			return cells
		}
	}
	return append(cells, model.Cell{Name: name, Value: value})
}
