package validate

var filterRootTypes = map[string]bool{
	"n8n-nodes-base.if":     true,
	"n8n-nodes-base.switch": true,
}

// checkFilterRoot is pass 3: if/switch nodes whose parameters.options
// exists at the root with zero keys reproduce a specific editor crash
// ("Could not find property option"); the fix is moving options inside
// conditions.
func checkFilterRoot(i int, node map[string]any) []Issue {
	nodeType, _ := node["type"].(string)
	if !filterRootTypes[nodeType] {
		return nil
	}
	params, ok := node["parameters"].(map[string]any)
	if !ok {
		return nil
	}
	options, ok := params["options"].(map[string]any)
	if !ok || len(options) != 0 {
		return nil
	}
	return []Issue{{
		Code:     "EMPTY_ROOT_OPTIONS",
		Severity: SeverityError,
		Message:  "parameters.options is present but empty, which causes \"Could not find property option\" in the editor",
		Location: Location{Path: nodePath(i) + ".parameters.options", NodeIndex: intPtr(i), NodeType: nodeType},
		Hint:     "options belongs inside parameters.conditions.options, not at the parameters root",
	}}
}
