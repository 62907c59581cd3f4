package loaders

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/timber/engine/renderer/metadata"
)

// TextLoader reads a file verbatim. Config files go through it and are decoded
// by their owner.
type TextLoader struct {
	Type metadata.ResourceType
}

func (tl *TextLoader) Load(path string, params interface{}) (*metadata.Resource, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t := tl.Type
	if t == metadata.ResourceTypeNone {
		t = metadata.ResourceTypeText
	}
	return &metadata.Resource{
		Name:     strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		FullPath: path,
		Type:     t,
		DataSize: uint64(len(buf)),
		Data:     buf,
	}, nil
}

func (tl *TextLoader) Unload(res *metadata.Resource) error {
	res.Data = nil
	res.DataSize = 0
	return nil
}
