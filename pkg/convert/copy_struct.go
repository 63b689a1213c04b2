package convert

import (
	"time"

	"github.com/jinzhu/copier"
	"github.com/pkg/errors"

	"github.com/haierkeys/fast-note-ai-service/pkg/timex"
)

// timeConverters map domain timestamps onto the API time type; a nil *time.Time becomes the zero timex.Time
var timeConverters = []copier.TypeConverter{
	{
		SrcType: time.Time{},
		DstType: timex.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			return timex.Time(src.(time.Time)), nil
		},
	},
	{
		SrcType: &time.Time{},
		DstType: timex.Time{},
		Fn: func(src interface{}) (interface{}, error) {
			t, _ := src.(*time.Time)
			if t == nil {
				return timex.Time{}, nil
			}
			return timex.Time(*t), nil
		},
	},
}

// StructAssign copies same-named fields from src into dst
// StructAssign 把 src 与 dst 中同名字段的值复制到 dst
func StructAssign(src any, dst any) error {
	if err := copier.CopyWithOption(dst, src, copier.Option{IgnoreEmpty: false, DeepCopy: true, Converters: timeConverters}); err != nil {
		return errors.Wrap(err, "struct assign")
	}
	return nil
}
