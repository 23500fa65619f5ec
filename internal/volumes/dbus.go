package volumes

import (
	"bytes"
	"context"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	dbusInterface  = "org.freedesktop.DBus"
	getNameOwner   = dbusInterface + ".GetNameOwner"
	managedObjects = dbusInterface + ".ObjectManager.GetManagedObjects"
)

type objectMap = map[dbus.ObjectPath]map[string]map[string]dbus.Variant

// callWithTimeout bounds a D-Bus call by timeout and by ctx.
func callWithTimeout(ctx context.Context, obj dbus.BusObject, timeout time.Duration, method string, args ...any) *dbus.Call {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return obj.CallWithContext(ctx, method, 0, args...)
}

func mapString(props map[string]dbus.Variant, key string) string {
	if v, ok := props[key]; ok {
		s, _ := v.Value().(string)
		return s
	}
	return ""
}

func mapBool(props map[string]dbus.Variant, key string) bool {
	if v, ok := props[key]; ok {
		b, _ := v.Value().(bool)
		return b
	}
	return false
}

func mapStrings(props map[string]dbus.Variant, key string) []string {
	if v, ok := props[key]; ok {
		s, _ := v.Value().([]string)
		return s
	}
	return nil
}

func mapObjectPath(props map[string]dbus.Variant, key string) dbus.ObjectPath {
	if v, ok := props[key]; ok {
		p, _ := v.Value().(dbus.ObjectPath)
		return p
	}
	return ""
}

// mapByteString decodes UDisks2's NUL-terminated byte array strings.
func mapByteString(props map[string]dbus.Variant, key string) string {
	if v, ok := props[key]; ok {
		b, _ := v.Value().([]byte)
		return string(bytes.TrimRight(b, "\x00"))
	}
	return ""
}

func mapByteStrings(props map[string]dbus.Variant, key string) []string {
	v, ok := props[key]
	if !ok {
		return nil
	}
	raw, _ := v.Value().([][]byte)
	out := make([]string, 0, len(raw))
	for _, b := range raw {
		if s := string(bytes.TrimRight(b, "\x00")); s != "" {
			out = append(out, s)
		}
	}
	return out
}
