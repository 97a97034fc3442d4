package remote

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
)

type Entry struct {
	Name      string `json:"name"`
	IsDir     bool   `json:"is_dir"`
	IsSymlink bool   `json:"is_symlink"`
	Size      Size   `json:"size,omitempty"`
	Owner     string `json:"owner,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Created   string `json:"create_time,omitempty"`
	Modified  string `json:"edit_time,omitempty"`
}

// IsParent reports whether the entry is the synthetic ".." link to the
// parent directory.
func (e Entry) IsParent() bool { return e.Name == ".." }

type Listing struct {
	Path  string  `json:"path"`
	Items []Entry `json:"items"`
}

type Result struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
}

// Size is the display form of an entry size. The backend may send either a
// preformatted string ("4.0 KB") or a raw byte count.
type Size string

func (s *Size) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	if b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = Size(v)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("size: %w", err)
	}
	bytesCount, err := n.Int64()
	if err != nil || bytesCount < 0 {
		*s = Size(n.String())
		return nil
	}
	*s = Size(humanize.IBytes(uint64(bytesCount)))
	return nil
}

type commandRequest struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}
