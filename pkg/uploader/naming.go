package uploader

import (
	"path/filepath"
	"strings"

	"github.com/thebartekbanach/tinyrelay/pkg/compressor"
)

// ResultFileName names the processed copy of originalName.
func ResultFileName(originalName string, options Options) string {
	ext := filepath.Ext(originalName)
	base := strings.TrimSuffix(originalName, ext)

	switch options.Operation {
	case compressor.OperationResize:
		return base + "_resized" + ext
	case compressor.OperationConvert:
		subtype := options.Convert.Format
		if slash := strings.IndexByte(subtype, '/'); slash >= 0 {
			subtype = subtype[slash+1:]
		}
		return base + "_converted." + subtype
	default:
		return base + "_compressed" + ext
	}
}
