package models

// Declaration is one middleware annotation found in source, already
// resolved to fully qualified class names
type Declaration struct {
	ClassName   string   `json:"class"`            // qualified annotated type, import/path.Type
	MethodName  string   `json:"method,omitempty"` // empty for class scope
	Kind        string   `json:"kind"`             // middleware or middlewares
	Middlewares []string `json:"middlewares"`      // qualified middleware classes, as written
	File        string   `json:"file"`
	Line        int      `json:"line"`
}

// IsGroup returns true for declarations attached to the whole class
func (d Declaration) IsGroup() bool {
	return d.MethodName == ""
}

// Target returns Class or Class.Method for messages
func (d Declaration) Target() string {
	if d.IsGroup() {
		return d.ClassName
	}
	return d.ClassName + "." + d.MethodName
}
