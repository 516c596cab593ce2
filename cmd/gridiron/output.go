package main

import (
	"fmt"
	"io"

	sonic "github.com/bytedance/sonic"
	"github.com/valyala/bytebufferpool"
)

func writeJSON(w io.Writer, v any) error {
	raw, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.Write(raw)
	_ = buf.WriteByte('\n')
	if _, err := w.Write(buf.B); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
