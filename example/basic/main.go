package main

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	cograph "github.com/siherrmann/cograph"
	"github.com/siherrmann/cograph/helper"
	"github.com/siherrmann/cograph/model"
)

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	g, err := cograph.NewCoGraph(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create cograph: %v", err)
	}
	defer g.Close()

	ctx := context.Background()

	// Build a small knowledge graph: two people, a company and a project
	ada := &model.Entity{Type: model.EntityTypePerson, Name: "Ada Lovelace"}
	charles := &model.Entity{Type: model.EntityTypePerson, Name: "Charles Babbage"}
	analytical := &model.Entity{Type: model.EntityTypeProject, Name: "Analytical Engine"}
	babbageCo := &model.Entity{Type: model.EntityTypeOrganization, Name: "Babbage & Co"}

	for _, entity := range []*model.Entity{ada, charles, analytical, babbageCo} {
		if err := g.AddEntity(ctx, entity); err != nil {
			log.Fatalf("Failed to add entity %s: %v", entity.Name, err)
		}
	}

	// Relations between them
	relations := []*model.Relation{
		{FromID: ada.ID, ToID: charles.ID, Type: model.RelationTypeRelatedTo},
		{FromID: analytical.ID, ToID: ada.ID, Type: model.RelationTypeCreatedBy, Weight: 2.0},
		{FromID: analytical.ID, ToID: charles.ID, Type: model.RelationTypeCreatedBy, Weight: 2.0},
		{FromID: charles.ID, ToID: babbageCo.ID, Type: model.RelationTypePartOf},
	}
	for _, relation := range relations {
		if err := g.AddRelation(relation); err != nil {
			log.Fatalf("Failed to add relation: %v", err)
		}
	}

	// Two notes mentioning overlapping entities
	noteOne := uuid.New()
	noteTwo := uuid.New()
	if _, err := g.LinkNote(noteOne, ada.ID, charles.ID, analytical.ID); err != nil {
		log.Fatalf("Failed to link note: %v", err)
	}
	if _, err := g.LinkNote(noteTwo, ada.ID, babbageCo.ID); err != nil {
		log.Fatalf("Failed to link note: %v", err)
	}

	// Graph statistics
	stats, err := g.GetStats(ctx)
	if err != nil {
		log.Fatalf("Failed to get stats: %v", err)
	}
	fmt.Printf("\n=== Graph statistics ===\n")
	fmt.Printf("Nodes: %d, Edges: %d, Average degree: %.2f\n", stats.TotalNodes, stats.TotalEdges, stats.AverageDegree)

	// Single node with degree counts
	node, err := g.GetNode(ctx, ada.ID)
	if err != nil {
		log.Fatalf("Failed to get node: %v", err)
	}
	fmt.Printf("\n=== Node ===\n")
	fmt.Printf("%s: degree %d (in %d, out %d)\n", node.Entity.Name, node.Degree, node.InDegree, node.OutDegree)

	// Immediate neighborhood
	neighborhood, err := g.GetNeighborhood(ctx, charles.ID, nil)
	if err != nil {
		log.Fatalf("Failed to get neighborhood: %v", err)
	}
	fmt.Printf("\n=== Neighborhood of %s ===\n", neighborhood.Center.Name)
	for _, neighbor := range neighborhood.Neighbors {
		fmt.Printf("- %s (%s, %s)\n", neighbor.Entity.Name, neighbor.Relation.Type, neighbor.Direction)
	}

	// Breadth-first traversal
	reachable, err := g.BFS(ctx, ada.ID, &model.TraversalConfig{MaxDepth: 2})
	if err != nil {
		log.Fatalf("Failed to traverse: %v", err)
	}
	fmt.Printf("\n=== Reachable from %s within 2 hops ===\n", ada.Name)
	for _, traversalNode := range reachable {
		fmt.Printf("- %s at depth %d\n", traversalNode.Entity.Name, traversalNode.Depth)
	}

	// Shortest path
	path, err := g.FindPath(ctx, ada.ID, babbageCo.ID, nil)
	if err != nil {
		log.Fatalf("Failed to find path: %v", err)
	}
	fmt.Printf("\n=== Path from %s to %s ===\n", ada.Name, babbageCo.Name)
	if path == nil {
		fmt.Println("No path found")
	} else {
		for i, pathNode := range path.Nodes {
			if i > 0 {
				fmt.Printf(" -> ")
			}
			fmt.Printf("%s", pathNode.Name)
		}
		fmt.Printf(" (total weight %.1f)\n", path.TotalWeight)
	}

	// Co-occurrence analysis
	coOccurring, err := g.FindCoOccurring(ctx, ada.ID, 10, 1)
	if err != nil {
		log.Fatalf("Failed to find co-occurring entities: %v", err)
	}
	fmt.Printf("\n=== Entities sharing notes with %s ===\n", ada.Name)
	for _, occurrence := range coOccurring {
		fmt.Printf("- %s (%d shared notes)\n", occurrence.Entity.Name, occurrence.Occurrences)
	}

	// Hub detection
	hubs, err := g.GetHubs(ctx, 3)
	if err != nil {
		log.Fatalf("Failed to get hubs: %v", err)
	}
	fmt.Printf("\n=== Hubs ===\n")
	for _, hub := range hubs {
		fmt.Printf("- %s (degree %d)\n", hub.Entity.Name, hub.Degree)
	}

	// Relation suggestions from co-occurrence
	suggestions, err := g.SuggestRelations(ctx, &model.SuggestionConfig{MinCoOccurrences: 1, MaxResults: 10})
	if err != nil {
		log.Fatalf("Failed to suggest relations: %v", err)
	}
	fmt.Printf("\n=== Suggested relations ===\n")
	if len(suggestions) == 0 {
		fmt.Println("No suggestions")
	}
	for _, suggestion := range suggestions {
		fmt.Printf("- %s <-> %s (%d shared notes)\n", suggestion.From.Name, suggestion.To.Name, suggestion.Occurrences)
	}
}
