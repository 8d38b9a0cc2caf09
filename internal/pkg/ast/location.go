package ast

import "fmt"

// Location is a span of runes inside a source file.
type Location struct {
	FilePath    string
	FileContent []rune
	Start       uint32
	End         uint32
}

func NewLocation(filePath string, content []rune, start, end uint32) Location {
	return Location{
		FilePath:    filePath,
		FileContent: content,
		Start:       start,
		End:         end,
	}
}

func NewLocationCursor(filePath string, content []rune, start uint32) Location {
	return NewLocation(filePath, content, start, start)
}

func (loc Location) EqualsTo(other Location) bool {
	return loc.FilePath == other.FilePath && loc.Start == other.Start && loc.End == other.End
}

func (loc Location) IsEmpty() bool {
	return loc.FilePath == ""
}

func (loc Location) CursorString() string {
	if loc.IsEmpty() {
		return ""
	}
	line, col, _, _ := loc.GetLineAndColumn()
	return fmt.Sprintf("%s:%d:%d", loc.FilePath, line, col)
}

func (loc Location) GetLineAndColumn() (startLine, startColumn, endLine, endColumn int) {
	line := 1
	column := 1

	for i := uint32(0); i <= uint32(len(loc.FileContent)); i++ {
		if i == loc.Start {
			startLine = line
			startColumn = column
		}
		if i == loc.End {
			endLine = line
			endColumn = column
		}
		if i == uint32(len(loc.FileContent)) {
			break
		}

		if '\n' == loc.FileContent[i] {
			line++
			column = 1
		} else {
			column++
		}
	}
	return
}
