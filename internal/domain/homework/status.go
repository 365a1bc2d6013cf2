package homework

import "fmt"

const statusTemplate = "Изменился статус проверки работы \"%s\". %s"

// NoNewsReport is the report produced when the API answers without a submissions key.
const NoNewsReport = "Новых статусов проверки нет."

// FormatStatus turns one submission record into notification text.
// The same (name, verdict) pair always yields the same string.
func FormatStatus(record any) (string, error) {
	rec, ok := record.(Record)
	if !ok {
		return "", NewError(KindShapeError, "homework is not an object")
	}

	name, ok := recordName(rec)
	if !ok {
		return "", NewError(KindShapeError, "missing name")
	}

	code, _ := rec[FieldStatus].(string)
	verdict, ok := VerdictText(code)
	if !ok {
		return "", Errorf(KindUnknownVerdict, "unknown verdict %q", code)
	}
	return fmt.Sprintf(statusTemplate, name, verdict), nil
}

func recordName(rec Record) (string, bool) {
	for _, key := range []string{FieldName, FieldNameShort} {
		if name, ok := rec[key].(string); ok {
			return name, true
		}
	}
	return "", false
}
