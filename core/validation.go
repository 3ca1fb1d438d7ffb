// Copyright 2025 FINOS
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "fmt"

// ValidateDocument validates a Document according to domain rules.
//
// Validation rules:
//   - Name must not be empty
//   - Source must not be empty
//
// NOT validated:
//   - ID (0 is overwritten by content hashing at storage time)
func ValidateDocument(doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}

	if doc.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyName)
	}

	if doc.Source == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptySource)
	}

	return nil
}

// ValidateStructuredRecord validates an extractor output row.
//
// Validation rules:
//   - Article must not be empty (a record always belongs to an article)
//   - Content must not be empty (boundary-only lines never emit a record)
//
// Chapter and ChapterName stay optional: text before the first chapter
// boundary carries no chapter context.
func ValidateStructuredRecord(record *StructuredRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}

	if record.Article == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyLabel)
	}

	if record.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyContent)
	}

	return nil
}

// ValidateArticle validates a canonical Article according to domain rules.
//
// Validation rules:
//   - DocumentId must be set
//   - Label must not be empty
//   - Content must not be empty
//
// NOT validated (populated by processors):
//   - ID (0 is valid from database sequences)
//   - Theme and SubTheme (legitimately empty for text preceding the
//     first named chapter or article)
func ValidateArticle(article *Article) error {
	if article == nil {
		return fmt.Errorf("%w: article is nil", ErrInvalidArticle)
	}

	if article.DocumentId == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrMissingDocument)
	}

	if article.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyLabel)
	}

	if article.Content == "" {
		return fmt.Errorf("%w: %w", ErrInvalidArticle, ErrEmptyContent)
	}

	return nil
}
