package code

import (
	"fmt"
	"net/http"
)

// Code response code with bilingual message
// Code 带双语消息的响应码
type Code struct {
	code   int
	status bool
	Lang   lang

	data     interface{}
	haveData bool

	details     []string
	haveDetails bool
}

var codes = map[int]string{}
var sussCodes = map[int]string{}

// NewError registers a failure code, panics on duplicates
// NewError 注册失败码，重复时 panic
func NewError(code int, l lang) *Code {
	if _, ok := codes[code]; ok {
		panic(fmt.Sprintf("error code %d already exists", code))
	}
	codes[code] = l.GetMessage()
	return &Code{code: code, status: false, Lang: l}
}

// NewSuss registers a success code
// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := sussCodes[code]; ok {
		panic(fmt.Sprintf("success code %d already exists", code))
	}
	sussCodes[code] = l.GetMessage()
	return &Code{code: code, status: true, Lang: l}
}

// Clone returns a copy without data or details
// Clone 返回不带数据和详情的副本
func (e *Code) Clone() *Code {
	return &Code{code: e.code, status: e.status, Lang: e.Lang}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() interface{} {
	return e.data
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

// WithData returns a copy carrying data; the registered code is never mutated
// WithData 返回携带数据的副本，不修改已注册的全局码
func (e *Code) WithData(data interface{}) *Code {
	c := *e
	c.haveData = true
	c.data = data
	return &c
}

// WithDetails returns a copy carrying details
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := *e
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return &c
}

// Is lets errors.Is match codes by number
func (e *Code) Is(target error) bool {
	t, ok := target.(*Code)
	if !ok {
		return false
	}
	return t.code == e.code
}

func (e *Code) StatusCode() int {
	return http.StatusOK
}
