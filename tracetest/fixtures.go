/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package tracetest

// LangGraphStandardResponse is a standard (non-cloud) invoke response with a
// plain conversation and no tool usage.
func LangGraphStandardResponse() string {
	return `{
		"messages": [
			{"type": "human", "content": "What is 2+2?"},
			{"type": "ai", "content": "2+2 equals 4.", "tool_calls": []}
		],
		"output": "2+2 equals 4."
	}`
}

// LangGraphWithToolsResponse is an invoke response carrying one tool
// round-trip and usage metadata on the closing assistant message.
func LangGraphWithToolsResponse() string {
	return `{
		"messages": [
			{"type": "human", "content": "Search for the capital of France"},
			{
				"type": "ai",
				"content": "",
				"tool_calls": [
					{"id": "call_123", "name": "search", "args": {"query": "capital of France"}}
				]
			},
			{
				"type": "tool",
				"name": "search",
				"content": "Paris is the capital of France.",
				"tool_call_id": "call_123"
			},
			{
				"type": "ai",
				"content": "The capital of France is Paris.",
				"usage_metadata": {"input_tokens": 50, "output_tokens": 100, "total_tokens": 150}
			}
		],
		"output": "The capital of France is Paris."
	}`
}

// LangGraphCloudResponse is a Cloud thread/run response: messages nested
// under agent, token usage under response_metadata.
func LangGraphCloudResponse() string {
	return `{
		"thread_id": "thread_abc123",
		"run_id": "run_xyz789",
		"status": "success",
		"agent": {
			"messages": [
				{
					"type": "ai",
					"content": "I'll search for that information.",
					"response_metadata": {
						"token_usage": {"prompt_tokens": 50, "completion_tokens": 100, "total_tokens": 150}
					}
				}
			]
		}
	}`
}

// LangGraphStreamLines is an SSE-like streamed run: step events for tool
// usage, message events for output text, and a metadata event naming the
// thread.
func LangGraphStreamLines() []string {
	return []string{
		`data: {"type": "metadata", "thread_id": "thread_stream1"}`,
		`data: {"type": "step", "tool": "search", "content": "Searching for the capital of France", "parameters": {"query": "capital of France"}}`,
		`data: {"type": "message", "content": "The capital of France is Paris."}`,
	}
}

// CrewAITasksResponse is a crew kickoff response in the tasks shape, with
// run-level usage_metrics.
func CrewAITasksResponse() string {
	return `{
		"crew_id": "crew_abc123",
		"tasks": [
			{
				"id": "task-1",
				"description": "Research the topic",
				"tool": "web_search",
				"inputs": {"query": "AI developments 2025"},
				"output": "Found 5 relevant articles",
				"status": "completed",
				"duration": 2500.0
			},
			{
				"id": "task-2",
				"description": "Summarize findings",
				"tool": "summarize",
				"inputs": {"text": "..."},
				"output": "AI is advancing rapidly in 2025",
				"status": "completed",
				"duration": 1500.0
			}
		],
		"result": "AI developments in 2025 include...",
		"usage_metrics": {"total_tokens": 2500, "total_cost": 0.05}
	}`
}

// CrewAIAgentExecutionsResponse is a crew kickoff response in the
// agent_executions shape.
func CrewAIAgentExecutionsResponse() string {
	return `{
		"crew_id": "crew_def456",
		"agent_executions": [
			{"agent_name": "Researcher", "tool_used": "web_search", "output": "Found relevant information"},
			{"agent_name": "Writer", "tool_used": "text_generator", "output": "Generated summary"}
		],
		"final_output": "The research findings indicate..."
	}`
}

// HTTPFlatResponse is a generic agent response with run-level accounting at
// the root and no step detail.
func HTTPFlatResponse() string {
	return `{
		"response": "The answer is 42.",
		"cost": 0.02,
		"tokens": 1500,
		"latency": 2500.0
	}`
}

// HTTPNestedResponse is a generic agent response with a steps list and
// accounting nested under metadata.
func HTTPNestedResponse() string {
	return `{
		"response": "The capital of France is Paris.",
		"metadata": {
			"cost": 0.03,
			"tokens": {"input": 50, "output": 100, "cached": 0}
		},
		"steps": [
			{
				"tool_name": "search",
				"parameters": {"query": "capital France"},
				"output": "Paris",
				"latency": 1000.0,
				"cost": 0.01
			},
			{
				"tool_name": "format",
				"parameters": {"template": "answer"},
				"output": "The capital of France is Paris.",
				"latency": 500.0,
				"cost": 0.02
			}
		]
	}`
}

// TapeScopeEventLines is a streamed JSONL conversation: one tool round-trip
// followed by a token-streamed answer and its final_message replacement.
func TapeScopeEventLines() []string {
	return []string{
		`{"type": "connected"}`,
		`{"type": "tool_call", "data": {"id": "call-1", "name": "search", "args": {"query": "capital of France"}}}`,
		`{"type": "tool_result", "data": {"id": "call-1", "result": "Paris", "success": true}}`,
		`{"type": "token", "data": {"token": "The capital "}}`,
		`{"type": "token", "data": {"token": "is Paris."}}`,
		`{"type": "final_message", "data": {"text": "The capital of France is Paris."}}`,
	}
}
