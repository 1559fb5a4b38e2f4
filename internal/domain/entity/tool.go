package entity

type ToolName string

const (
	ToolGoToURL        ToolName = "go_to_url"
	ToolGoBack         ToolName = "go_back"
	ToolClickElement   ToolName = "click_element"
	ToolInputText      ToolName = "input_text"
	ToolSendKeys       ToolName = "send_keys"
	ToolScroll         ToolName = "scroll"
	ToolExtractContent ToolName = "extract_content"
	ToolDone           ToolName = "done"
)

func (t ToolName) String() string {
	return string(t)
}

type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]interface{}
}
