// SPDX-License-Identifier: MPL-2.0

package omod

import (
	"fmt"
	"strings"
	"sync"
)

// recordingObserver keeps every message for assertions.
type recordingObserver struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingObserver) Debug(msg any, keyvals ...any) { r.record("DEBUG", msg, keyvals) }
func (r *recordingObserver) Info(msg any, keyvals ...any)  { r.record("INFO", msg, keyvals) }

func (r *recordingObserver) record(level string, msg any, keyvals []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, fmt.Sprintf("%s %v %v", level, msg, keyvals))
}

func (r *recordingObserver) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if strings.Contains(m, substr) {
			return true
		}
	}
	return false
}

// fullDescriptor references one file of every category.
const fullDescriptor = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE module PUBLIC "-//OpenMRS//DTD OpenMRS Config 1.0//EN" "http://resources.openmrs.org/doctype/config-1.0.dtd">
<module configVersion="1.0">
	<id>reporting</id>
	<require_version>1.6.0</require_version>
	<activator>org.example.reporting.ReportingActivator</activator>
	<extension>
		<point>org.openmrs.admin.list</point>
		<class>org.example.reporting.extension.AdminList</class>
	</extension>
	<advice>
		<point>org.openmrs.api.PatientService</point>
		<class>org.example.reporting.advice.PatientAdvice</class>
	</advice>
	<servlet>
		<servlet-name>report</servlet-name>
		<class>org.example.reporting.web.ReportServlet</class>
	</servlet>
	<messages>
		<lang>en</lang>
		<file>messages.properties</file>
	</messages>
	<mappingFiles>
    ReportDefinition.hbm.xml
    ReportSchedule.hbm.xml
  </mappingFiles>
</module>
`

// fullModuleTree satisfies every reference in fullDescriptor.
func fullModuleTree() map[string]string {
	return map[string]string{
		"config.xml": fullDescriptor,
		"org/example/reporting/ReportingActivator.class":   "cafebabe",
		"org/example/reporting/extension/AdminList.class":  "cafebabe",
		"org/example/reporting/advice/PatientAdvice.class": "cafebabe",
		"org/example/reporting/web/ReportServlet.class":    "cafebabe",
		"messages.properties":                              "title=Reports",
		"ReportDefinition.hbm.xml":                         "<hibernate-mapping/>",
		"ReportSchedule.hbm.xml":                           "<hibernate-mapping/>",
	}
}
