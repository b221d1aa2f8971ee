package base

import (
	"flag"
	"fmt"
	"io"

	jsonSlow "encoding/json"

	jsonFast "github.com/goccy/go-json"
)

type JsonMap map[string]interface{}

/***************************************
 * JSON Marshalling for formattable elements
 ***************************************/

func MarshalJSON[T fmt.Stringer](x T) ([]byte, error) {
	return jsonFast.Marshal(x.String())
}
func UnmarshalJSON[T flag.Value](x T, data []byte) error {
	var str string
	if err := jsonFast.Unmarshal(data, &str); err != nil {
		return err
	}
	return x.Set(str)
}

/***************************************
 * JSON Serialization
 ***************************************/

type JsonOptions struct {
	PrettyPrint bool
}

type JsonOptionFunc = func(*JsonOptions)

func OptionJsonPrettyPrint(enabled bool) JsonOptionFunc {
	return func(jo *JsonOptions) {
		jo.PrettyPrint = enabled
	}
}

func JsonSerialize(x interface{}, dst io.Writer, options ...JsonOptionFunc) error {
	var opts JsonOptions
	for _, it := range options {
		it(&opts)
	}

	encoder := jsonFast.NewEncoder(dst)

	if opts.PrettyPrint {
		encoder.SetIndent("", "  ")
	} else {
		encoder.SetIndent("", "")
	}

	return encoder.EncodeWithOption(x,
		jsonFast.UnorderedMap(),
		jsonFast.DisableHTMLEscape(),
		jsonFast.DisableNormalizeUTF8())
}
func JsonDeserialize(x interface{}, src io.Reader) error {
	decoder := jsonFast.NewDecoder(src)

	// we want errors by default when unknown fields are found in json file
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(x); err == nil {
		return nil
	} else {
		return err
	}
}

/***************************************
 * Pretty print an object using Json serialization
 ***************************************/

func PrettyPrint(x interface{}) string {
	tmp := TransientBuffer.Allocate()
	defer TransientBuffer.Release(tmp)

	buf := tmp

	encoder := jsonSlow.NewEncoder(buf)

	var err error
	if err = encoder.Encode(x); err == nil {
		tmp2 := TransientBuffer.Allocate()
		defer TransientBuffer.Release(tmp2)

		pretty := tmp2

		if err = jsonSlow.Indent(pretty, buf.Bytes(), "", "\t"); err == nil {
			return pretty.String()
		}
	}
	return fmt.Sprint(err)
}

type PrettyPrinter struct {
	Ref interface{}
}

func (x PrettyPrinter) String() string {
	return PrettyPrint(x.Ref)
}
