package docstore

import (
	"time"

	models "docforge/internal/domain/models/docstore"
)

// DocumentForDraft resolves the document row for a new document node.
// Supplied overrides are trusted with their declared source (defaulting
// to "user"); anything missing is filled by the classification
// heuristic with source "auto". Both backends go through this so a
// paste classifies identically everywhere.
func DocumentForDraft(draft models.NodeDraft, nodeID, documentID string, now time.Time) *models.Document {
	doc := &models.Document{
		DocumentID:      documentID,
		NodeID:          nodeID,
		DefaultViewMode: models.ViewModeEdit,
	}
	if draft.DefaultViewMode != nil && *draft.DefaultViewMode != "" {
		doc.DefaultViewMode = *draft.DefaultViewMode
	}

	var cls *Classification
	classify := func() Classification {
		if cls == nil {
			c := Classify(draft.Content, draft.Title)
			cls = &c
		}
		return *cls
	}

	if draft.DocType != nil && *draft.DocType != "" {
		doc.DocType = *draft.DocType
		doc.DocTypeSource = sourceOrUser(draft.DocTypeSource)
	} else {
		doc.DocType = classify().DocType
		doc.DocTypeSource = models.SourceAuto
	}

	if draft.LanguageHint != nil && *draft.LanguageHint != "" {
		doc.LanguageHint = *draft.LanguageHint
		doc.LanguageSource = sourceOrUser(draft.LanguageSource)
	} else {
		doc.LanguageHint = classify().LanguageHint
		doc.LanguageSource = models.SourceAuto
	}

	if cls != nil {
		t := now
		doc.ClassificationUpdatedAt = &t
	}
	return doc
}

func sourceOrUser(s models.ClassificationSource) models.ClassificationSource {
	if s == "" {
		return models.SourceUser
	}
	return s
}
