package archive

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/mithrel/quire/pkg/api"
)

// ImportJSON creates entries from r, which holds either a JSON array of
// entries or one entry per line (NDJSON). Only title and content_md are read.
func ImportJSON(ctx context.Context, c Creator, r io.Reader) (Result, error) {
	var res Result
	br := bufio.NewReader(r)
	first, err := peekFirstNonSpace(br)
	if errors.Is(err, io.EOF) {
		return res, nil
	}
	if err != nil {
		return res, err
	}

	dec := json.NewDecoder(br)
	if first == '[' {
		var arr []api.Entry
		if err := dec.Decode(&arr); err != nil {
			return res, fmt.Errorf("decode entries: %w", err)
		}
		for i, e := range arr {
			if err := res.add(ctx, c, fmt.Sprintf("entry %d", i+1), e.Title, e.ContentMD); err != nil {
				return res, err
			}
		}
		return res, nil
	}

	for n := 1; ; n++ {
		var e api.Entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return res, nil
			}
			return res, fmt.Errorf("decode record %d: %w", n, err)
		}
		if err := res.add(ctx, c, fmt.Sprintf("record %d", n), e.Title, e.ContentMD); err != nil {
			return res, err
		}
	}
}

func peekFirstNonSpace(r *bufio.Reader) (byte, error) {
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		switch b {
		case ' ', '\n', '\r', '\t':
			continue
		}
		if err := r.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}
