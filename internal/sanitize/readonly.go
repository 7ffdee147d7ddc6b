package sanitize

// ReadOnlyKeys are the workflow-level keys the server populates and
// rejects on write; StripReadOnly removes them before submission.
var ReadOnlyKeys = []string{
	"id", "versionId", "meta", "createdAt", "updatedAt", "staticData",
	"pinData", "tags", "shared", "homeProject", "sharedWithProjects",
	"triggerCount", "lastNodeExecuted", "templateData", "activeExecutions",
}

// StripReadOnly removes server-populated keys from a workflow's generic
// map representation before submission. It operates on map[string]any
// rather than workflow.Workflow because most of the read-only keys
// (versionId, meta, staticData, ...) are server-side fields this
// module's Workflow type does not model at all; tags is modeled there
// and is removed here all the same.
func StripReadOnly(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	for _, k := range ReadOnlyKeys {
		delete(out, k)
	}
	return out
}
