package daotest

import (
	"io/ioutil"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"testing"
)

var (
	protoMessage = regexp.MustCompile(`(?s)message\s+(\w+)\s*\{(.*?)\}`)
	protoField   = regexp.MustCompile(`(?m)^\s*(\w+)\s+(\w+)\s*=\s*(\d+)\s*;`)
)

// protoWireTypes maps the scalar types used by the codecs to the wire type
// written in the struct tag.
var protoWireTypes = map[string]string{
	"bytes":  "bytes",
	"string": "bytes",
	"bool":   "varint",
	"uint32": "varint",
	"uint64": "varint",
	"int32":  "varint",
	"int64":  "varint",
}

type protoFieldDef struct {
	wire   string
	number int
}

// AssertProtoSchema fails the test if the protobuf tags of record do not
// declare exactly the fields of the named message in the .proto file.
func AssertProtoSchema(t testing.TB, protoFile, message string, record interface{}) {
	t.Helper()

	raw, err := ioutil.ReadFile(protoFile)
	if err != nil {
		t.Fatalf("cannot read %s: %s", protoFile, err)
	}
	want := make(map[string]protoFieldDef)
	for _, m := range protoMessage.FindAllStringSubmatch(string(raw), -1) {
		if m[1] != message {
			continue
		}
		for _, f := range protoField.FindAllStringSubmatch(m[2], -1) {
			wire, ok := protoWireTypes[f[1]]
			if !ok {
				t.Fatalf("%s.%s: unsupported type %s", message, f[2], f[1])
			}
			n, _ := strconv.Atoi(f[3])
			want[f[2]] = protoFieldDef{wire: wire, number: n}
		}
	}
	if len(want) == 0 {
		t.Fatalf("message %s not declared in %s", message, protoFile)
	}

	got := make(map[string]protoFieldDef)
	tp := reflect.TypeOf(record)
	if tp.Kind() == reflect.Ptr {
		tp = tp.Elem()
	}
	for i := 0; i < tp.NumField(); i++ {
		tag, ok := tp.Field(i).Tag.Lookup("protobuf")
		if !ok {
			continue
		}
		var def protoFieldDef
		var name string
		for j, part := range strings.Split(tag, ",") {
			switch {
			case j == 0:
				def.wire = part
			case j == 1:
				def.number, _ = strconv.Atoi(part)
			case strings.HasPrefix(part, "name="):
				name = strings.TrimPrefix(part, "name=")
			}
		}
		got[name] = def
	}

	if !reflect.DeepEqual(want, got) {
		t.Fatalf("%T does not match message %s\nwant %v\n got %v", record, message, want, got)
	}
}
