package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
)

//go:embed init.sql
var initSQL string

//go:embed entities.sql
var entitiesSQL string

//go:embed relations.sql
var relationsSQL string

//go:embed notelinks.sql
var noteLinksSQL string

// Function lists for verification
var EntitiesFunctions = []string{
	"init_entities",
	"insert_entity",
	"select_entity",
	"select_entity_by_name",
	"select_entities_by_ids",
	"select_entities_by_type",
	"search_entities",
	"count_entities_by_type",
	"update_entity_metadata",
	"update_entity_embedding",
	"select_entities_by_similarity",
	"delete_entity",
}

var RelationsFunctions = []string{
	"init_relations",
	"insert_relation",
	"select_relation",
	"select_relations_from_entity",
	"select_relations_to_entity",
	"select_relations_involving_entity",
	"count_relations_by_type",
	"aggregate_degrees_by_entity",
	"relation_exists_between",
	"update_relation_weight",
	"delete_relation",
}

var NoteLinksFunctions = []string{
	"init_note_links",
	"insert_note_link",
	"select_note_links_for_entity",
	"select_entities_for_note",
	"select_shared_note_counts",
	"select_co_occurring_pairs",
	"delete_note_links_for_note",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	log.Println("Database extensions initialized successfully")
	return nil
}

// LoadEntitiesSql loads entity-related SQL functions
func LoadEntitiesSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, EntitiesFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing entities functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(entitiesSQL)
	if err != nil {
		return fmt.Errorf("error executing entities SQL: %w", err)
	}

	exist, err := checkFunctions(db, EntitiesFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL entities functions loaded successfully")
	return nil
}

// LoadRelationsSql loads relation-related SQL functions
func LoadRelationsSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, RelationsFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing relations functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(relationsSQL)
	if err != nil {
		return fmt.Errorf("error executing relations SQL: %w", err)
	}

	exist, err := checkFunctions(db, RelationsFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL relations functions loaded successfully")
	return nil
}

// LoadNoteLinksSql loads note-link-related SQL functions
func LoadNoteLinksSql(db *sql.DB, force bool) error {
	if !force {
		exist, err := checkFunctions(db, NoteLinksFunctions)
		if err != nil {
			return fmt.Errorf("error checking existing note links functions: %w", err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(noteLinksSQL)
	if err != nil {
		return fmt.Errorf("error executing note links SQL: %w", err)
	}

	exist, err := checkFunctions(db, NoteLinksFunctions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required SQL functions were created")
	}

	log.Println("SQL note links functions loaded successfully")
	return nil
}

// LoadAllSql loads all SQL functions
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadEntitiesSql(db, force); err != nil {
		return err
	}

	if err := LoadRelationsSql(db, force); err != nil {
		return err
	}

	if err := LoadNoteLinksSql(db, force); err != nil {
		return err
	}

	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			log.Printf("Function %s does not exist", f)
			break
		}
	}
	return allExist, nil
}
