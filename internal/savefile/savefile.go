// Package savefile implements the JSON save-blob layout used by nms's own
// demo embedder's save file: current scene name,
// VM instruction pointer, variables map, flags map, and the runtime's
// cached scene-state snapshot (runtime.SaveRecord). Encode builds the blob
// field-by-field with github.com/tidwall/sjson rather than a single
// json.Marshal of a struct, and Patch applies a single in-place field edit
// the same way, so a CLI like `nms --patch-save scene=chapter2` never pays
// for a full unmarshal/remarshal round trip.
package savefile

import (
	"github.com/nmscript/nms/internal/runtime"
	"github.com/nmscript/nms/internal/vm"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Encode renders a SaveRecord as a JSON blob.
func Encode(rec runtime.SaveRecord) ([]byte, error) {
	data := []byte("{}")
	var err error
	set := func(path string, v any) {
		if err != nil {
			return
		}
		data, err = sjson.SetBytes(data, path, v)
	}

	set("scene", rec.Scene)
	set("ip", rec.IP)
	set("background", rec.Background)
	set("speaker", rec.Speaker)
	set("dialogue", rec.Dialogue)
	set("selectedChoice", rec.SelectedChoice)
	set("inDialogue", rec.InDialogue)
	set("skipMode", rec.SkipMode)
	set("visibleCharacters", rec.VisibleCharacters)
	set("choices", rec.Choices)

	for name, v := range rec.Variables {
		set("variables."+name+".kind", v.Kind.String())
		switch v.Kind {
		case vm.KindInt:
			set("variables."+name+".value", v.Int)
		case vm.KindFloat:
			set("variables."+name+".value", v.Float)
		case vm.KindBool:
			set("variables."+name+".value", v.Bool)
		case vm.KindString:
			set("variables."+name+".value", v.String)
		}
	}
	for name, f := range rec.Flags {
		set("flags."+name, f)
	}

	if err != nil {
		return nil, err
	}
	return data, nil
}

// Decode parses a JSON blob produced by Encode back into a SaveRecord.
func Decode(data []byte) (runtime.SaveRecord, error) {
	rec := runtime.SaveRecord{
		Variables: make(map[string]vm.Value),
		Flags:     make(map[string]bool),
	}

	rec.Scene = gjson.GetBytes(data, "scene").String()
	rec.IP = uint32(gjson.GetBytes(data, "ip").Uint())
	rec.Background = gjson.GetBytes(data, "background").String()
	rec.Speaker = gjson.GetBytes(data, "speaker").String()
	rec.Dialogue = gjson.GetBytes(data, "dialogue").String()
	rec.SelectedChoice = int(gjson.GetBytes(data, "selectedChoice").Int())
	rec.InDialogue = gjson.GetBytes(data, "inDialogue").Bool()
	rec.SkipMode = gjson.GetBytes(data, "skipMode").Bool()
	rec.VisibleCharacters = stringArray(gjson.GetBytes(data, "visibleCharacters"))
	rec.Choices = stringArray(gjson.GetBytes(data, "choices"))

	gjson.GetBytes(data, "variables").ForEach(func(key, value gjson.Result) bool {
		rec.Variables[key.String()] = decodeValue(value)
		return true
	})
	gjson.GetBytes(data, "flags").ForEach(func(key, value gjson.Result) bool {
		rec.Flags[key.String()] = value.Bool()
		return true
	})

	return rec, nil
}

// Patch applies a single field edit to an existing blob in place, without
// decoding the rest of the document (`sjson.SetBytes` on the raw bytes).
func Patch(data []byte, path string, value any) ([]byte, error) {
	return sjson.SetBytes(data, path, value)
}

func decodeValue(obj gjson.Result) vm.Value {
	switch obj.Get("kind").String() {
	case "int":
		return vm.IntValue(int32(obj.Get("value").Int()))
	case "float":
		return vm.FloatValue(float32(obj.Get("value").Float()))
	case "bool":
		return vm.BoolValue(obj.Get("value").Bool())
	case "string":
		return vm.StringValue(obj.Get("value").String())
	default:
		return vm.Null()
	}
}

func stringArray(arr gjson.Result) []string {
	if !arr.Exists() {
		return nil
	}
	vals := arr.Array()
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = v.String()
	}
	return out
}
