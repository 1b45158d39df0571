package metrics

// IndexTemplate is one legacy index template, created once per run if
// absent.
type IndexTemplate struct {
	Name string
	Body string
}

// Templates returns the index templates for both record types.
func Templates() []IndexTemplate {
	return []IndexTemplate{
		{Name: "corvus-task-metrics", Body: taskTemplateBody},
		{Name: "corvus-crawler-metrics", Body: crawlerTemplateBody},
	}
}

const taskTemplateBody = `{
  "index_patterns": ["corvus-task-metrics-*"],
  "mappings": {
    "properties": {
      "total_duration_millis": { "type": "long" },
      "name": { "type": "keyword" },
      "date": {
        "type": "date",
        "format": "yyyy-MM-dd HH:mm:ssZZZZZ"
      },
      "crawler_duration_millis": { "type": "long" },
      "persist_duration_millis": { "type": "long" },
      "result_code": { "type": "integer" },
      "result_label": { "type": "keyword" },
      "result_detail": { "type": "text" },
      "task": {
        "type": "nested",
        "properties": {
          "request": { "type": "object" },
          "sinks": { "type": "nested" }
        }
      }
    }
  }
}`

const crawlerTemplateBody = `{
  "index_patterns": ["corvus-crawler-*"],
  "mappings": {
    "properties": {
      "crawler_name": { "type": "keyword" },
      "result_code": { "type": "integer" },
      "result_message": { "type": "text" },
      "request_duration_millis": { "type": "long" },
      "error_detail": { "type": "text" },
      "request": {
        "type": "nested",
        "properties": {
          "url": { "type": "text" },
          "method": { "type": "keyword" },
          "header": { "type": "object" },
          "encoding_setting": { "type": "object" },
          "timeout": { "type": "integer" },
          "max_retry": { "type": "integer" },
          "query_params": { "type": "object" },
          "body_params": { "type": "object" }
        }
      },
      "retry_count": { "type": "integer" },
      "crawled_date": {
        "type": "date",
        "format": "yyyy-MM-dd HH:mm:ssZZZZZ"
      },
      "hostname": { "type": "keyword" }
    }
  }
}`
