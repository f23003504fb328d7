package tools

import (
	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Tool names as seen by the model.
const (
	ListDirectory          = "list_directory"
	ListDirectoryRecursive = "list_directory_recursive"
	ReadFile               = "read_file"
	CreateDirectory        = "create_directory"
	CreateFile             = "create_file"
	EditFile               = "edit_file"
	SaveMemory             = "save_memory"
	AppendToAIContext      = "append_to_ai_context"
)

const scopeNote = " If a project is active, the path is relative to the project root; otherwise it is relative to the user's home directory. Absolute paths and '..' are forbidden."

func pathParam(desc string) mcptypes.ToolOption {
	return mcptypes.WithString("path",
		mcptypes.Required(),
		mcptypes.Description(desc+" Use forward slashes `/`."),
	)
}

func listDirectoryTool() mcptypes.Tool {
	return mcptypes.NewTool(ListDirectory,
		mcptypes.WithDescription("Lists files and subdirectories within a path. Directories end with '/'."+scopeNote),
		pathParam(`The directory path, e.g. "src" or ".".`),
		mcptypes.WithReadOnlyHintAnnotation(true),
	)
}

func listDirectoryRecursiveTool(defaultDepth int) mcptypes.Tool {
	return mcptypes.NewTool(ListDirectoryRecursive,
		mcptypes.WithDescription("Recursively lists a path as an indented text tree, up to a maximum depth. Large trees are truncated."+scopeNote),
		pathParam(`The starting directory, e.g. "src" or ".".`),
		mcptypes.WithNumber("maxDepth",
			mcptypes.Description("Optional. Maximum depth to recurse. Higher values may be truncated."),
			mcptypes.DefaultNumber(float64(defaultDepth)),
		),
		mcptypes.WithReadOnlyHintAnnotation(true),
	)
}

func readFileTool() mcptypes.Tool {
	return mcptypes.NewTool(ReadFile,
		mcptypes.WithDescription("Reads the text content of a file. Long content is truncated."+scopeNote),
		pathParam(`The file path, e.g. "src/main.go".`),
		mcptypes.WithReadOnlyHintAnnotation(true),
	)
}

func createDirectoryTool() mcptypes.Tool {
	return mcptypes.NewTool(CreateDirectory,
		mcptypes.WithDescription("Creates a directory, including missing parents. Requires an active project."+scopeNote),
		pathParam(`The new directory, e.g. "src/components".`),
		mcptypes.WithReadOnlyHintAnnotation(false),
		mcptypes.WithDestructiveHintAnnotation(false),
	)
}

func createFileTool() mcptypes.Tool {
	return mcptypes.NewTool(CreateFile,
		mcptypes.WithDescription("Creates a new file with the given content, creating parent directories as needed. Fails if the file already exists. Requires an active project."+scopeNote),
		pathParam(`The new file, e.g. "src/helpers.go".`),
		mcptypes.WithString("content",
			mcptypes.Required(),
			mcptypes.Description("The initial text content of the file."),
		),
		mcptypes.WithReadOnlyHintAnnotation(false),
		mcptypes.WithDestructiveHintAnnotation(false),
	)
}

func editFileTool() mcptypes.Tool {
	return mcptypes.NewTool(EditFile,
		mcptypes.WithDescription("Overwrites an existing file with new content. Use read_file first when changing current content. Fails if the file does not exist. Requires an active project."+scopeNote),
		pathParam(`The file to overwrite, e.g. "src/main.go".`),
		mcptypes.WithString("new_content",
			mcptypes.Required(),
			mcptypes.Description("The complete new content of the file."),
		),
		mcptypes.WithReadOnlyHintAnnotation(false),
		mcptypes.WithDestructiveHintAnnotation(true),
	)
}

func saveMemoryTool() mcptypes.Tool {
	return mcptypes.NewTool(SaveMemory,
		mcptypes.WithDescription("Saves a concise summary or key fact to the user's long-term memory, for recall in later conversations."),
		mcptypes.WithString("summary_text",
			mcptypes.Required(),
			mcptypes.Description("The concise summary or fact to remember."),
		),
	)
}

func appendToAIContextTool() mcptypes.Tool {
	return mcptypes.NewTool(AppendToAIContext,
		mcptypes.WithDescription("Appends notes, decisions or summaries to the active project's AIContext.md file. Requires an active project."),
		mcptypes.WithString("text_to_append",
			mcptypes.Required(),
			mcptypes.Description("The Markdown text to append."),
		),
		mcptypes.WithReadOnlyHintAnnotation(false),
		mcptypes.WithDestructiveHintAnnotation(false),
	)
}
