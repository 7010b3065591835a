package server

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/solaris-forensic/casegraph/internal/session"
	"github.com/solaris-forensic/casegraph/internal/tools"
)

// New creates a fully configured MCP server with all tools registered
// against one case session.
func New(sess *session.Session) *mcp.Server {
	at := &tools.AuthTools{Auth: sess.Auth()}
	et := &tools.EvidenceTools{Session: sess}
	gt := &tools.GraphTools{Session: sess}
	st := &tools.AssistantTools{Session: sess}

	srv := mcp.NewServer(&mcp.Implementation{
		Name:    "casegraph-mcp",
		Version: "0.1.0",
	}, nil)

	// Account tools (local sign-in stand-in)
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sign_up",
		Description: "Create a local investigator account and sign in",
	}, at.SignUp)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sign_in",
		Description: "Sign in with email and password",
	}, at.SignIn)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "sign_out",
		Description: "Clear the current identity",
	}, at.SignOut)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "whoami",
		Description: "Show the currently signed-in investigator",
	}, at.WhoAmI)

	// Evidence tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_evidence",
		Description: "Ingest a batch of evidence files (audio, image, pdf, video): analyze them and merge the extracted entities, events and relationships into the case graph",
	}, et.AddEvidence)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_evidence",
		Description: "List all evidence files with processing status and assigned color",
	}, et.ListEvidence)

	// Graph tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "read_graph",
		Description: "Read the entire case knowledge graph",
	}, gt.ReadGraph)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "create_node",
		Description: "Manually create a graph node (placed near the centroid of the existing layout)",
	}, gt.CreateNode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "update_node",
		Description: "Replace a node's label, type and properties by id",
	}, gt.UpdateNode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "delete_node",
		Description: "Delete a node; every link touching it is removed as well",
	}, gt.DeleteNode)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "add_link",
		Description: "Add a directed labeled link between two existing nodes",
	}, gt.AddLink)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "remove_link",
		Description: "Remove exactly one link by its id",
	}, gt.RemoveLink)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "timeline",
		Description: "Project timestamped nodes onto a chronological view grouped by month",
	}, gt.Timeline)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "node_evidence",
		Description: "Resolve which evidence files a node is associated with (explicit attachments plus fuzzy provenance match)",
	}, gt.NodeEvidence)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "attach_evidence",
		Description: "Explicitly attach an evidence file to a node",
	}, gt.AttachEvidence)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "detach_evidence",
		Description: "Detach an evidence file from a node, clearing a matching provenance string too",
	}, gt.DetachEvidence)

	// Assistant tools
	mcp.AddTool(srv, &mcp.Tool{
		Name:        "ask_assistant",
		Description: "Ask the forensic assistant about the evidence; node proposals come back as pending messages requiring review",
	}, st.Ask)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "list_messages",
		Description: "Read the assistant transcript",
	}, st.ListMessages)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "review_proposal",
		Description: "Approve or reject a pending node proposal from the assistant",
	}, st.ReviewProposal)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "suggest_nodes",
		Description: "Ask the assistant for 3-5 candidate nodes missing from the graph, returned for review",
	}, st.SuggestNodes)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "toggle_suggestion",
		Description: "Toggle one suggestion in the batch under review",
	}, st.ToggleSuggestion)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "confirm_suggestions",
		Description: "Create the selected suggestions as graph nodes and discard the rest",
	}, st.ConfirmSuggestions)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "cancel_suggestions",
		Description: "Discard the suggestion batch without creating anything",
	}, st.CancelSuggestions)

	return srv
}
